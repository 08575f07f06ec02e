package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sipstack/vend-core/internal/app/errors"
	"github.com/sipstack/vend-core/internal/app/middlewares"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/sipstack/vend-core/internal/app/services"
)

type PaymentHandler struct {
	paymentService      *services.PaymentService
	authMiddleware      *middlewares.AuthMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewPaymentHandler(
	paymentService *services.PaymentService,
	authMiddleware *middlewares.AuthMiddleware,
	rateLimitMiddleware *middlewares.RateLimitMiddleware,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService:      paymentService,
		authMiddleware:      authMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentGroup := router.Group("/payments")

	// The webhook is called by the gateway, not a user.
	paymentGroup.Post("/webhook",
		h.rateLimitMiddleware.LimitByIP(middlewares.WebhookLimit),
		h.Webhook)

	paymentGroup.Post("/", h.authMiddleware.RequireUser, h.Initiate)
	paymentGroup.Get("/:merchantTxnId/status", h.authMiddleware.RequireUser, h.CheckStatus)
	paymentGroup.Post("/:gatewayTxnId/refund", h.authMiddleware.RequireUser, h.Refund)
}

func (h *PaymentHandler) Initiate(c *fiber.Ctx) error {
	var req models.PaymentInitiateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	userID := c.Locals("user_id").(uuid.UUID)

	response, err := h.paymentService.InitiatePayment(c.Context(), userID, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, response)
}

func (h *PaymentHandler) CheckStatus(c *fiber.Ctx) error {
	result, err := h.paymentService.CheckPaymentStatus(c.Context(), c.Params("merchantTxnId"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

// Webhook acknowledges every verified callback, even when settlement fails
// internally, so the gateway does not retry. Only a bad signature is
// rejected.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("X-VERIFY")

	_, err := h.paymentService.HandleWebhook(signature, c.Body())
	if err != nil {
		var appErr *errors.AppError
		if e, ok := err.(*errors.AppError); ok && e.Code == errors.CodeSignatureInvalid {
			appErr = e
		} else {
			appErr = errors.NewSignatureInvalidError("rejected")
		}
		return pkg.ErrorResponse(c, appErr)
	}

	return pkg.SuccessResponse(c, fiber.Map{"acknowledged": true})
}

func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	var req models.RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	req.GatewayTransactionID = c.Params("gatewayTxnId")

	refund, err := h.paymentService.ProcessRefund(c.Context(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, refund)
}
