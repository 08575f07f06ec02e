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

type VoucherHandler struct {
	voucherService     *services.VoucherService
	consumptionService *services.ConsumptionService
	authMiddleware     *middlewares.AuthMiddleware
}

func NewVoucherHandler(
	voucherService *services.VoucherService,
	consumptionService *services.ConsumptionService,
	authMiddleware *middlewares.AuthMiddleware,
) *VoucherHandler {
	return &VoucherHandler{
		voucherService:     voucherService,
		consumptionService: consumptionService,
		authMiddleware:     authMiddleware,
	}
}

func (h *VoucherHandler) RegisterRoutes(router fiber.Router) {
	voucherGroup := router.Group("/vouchers", h.authMiddleware.RequireUser)

	voucherGroup.Get("/", h.GetMyVouchers)
	voucherGroup.Get("/:id", h.GetVoucher)
	voucherGroup.Get("/:id/consumptions", h.GetVoucherConsumptions)
}

func (h *VoucherHandler) GetMyVouchers(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	pagination := &models.PaginationRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 10),
	}

	result, err := h.voucherService.GetVouchersByUser(userID, pagination)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *VoucherHandler) GetVoucher(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	voucher, err := h.voucherService.GetVoucher(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	if voucher.UserID != userID {
		return pkg.ErrorResponse(c, errors.NewNotFoundError("Voucher not found"))
	}

	return pkg.SuccessResponse(c, voucher)
}

func (h *VoucherHandler) GetVoucherConsumptions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uuid.UUID)

	pagination := &models.PaginationRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 10),
	}

	result, err := h.consumptionService.GetConsumptionsByVoucher(c.Params("id"), userID, pagination)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}
