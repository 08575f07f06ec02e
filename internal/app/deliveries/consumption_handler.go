package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sipstack/vend-core/internal/app/middlewares"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/sipstack/vend-core/internal/app/services"
)

type ConsumptionHandler struct {
	consumptionService   *services.ConsumptionService
	authMiddleware       *middlewares.AuthMiddleware
	machineKeyMiddleware *middlewares.MachineKeyMiddleware
	rateLimitMiddleware  *middlewares.RateLimitMiddleware
}

func NewConsumptionHandler(
	consumptionService *services.ConsumptionService,
	authMiddleware *middlewares.AuthMiddleware,
	machineKeyMiddleware *middlewares.MachineKeyMiddleware,
	rateLimitMiddleware *middlewares.RateLimitMiddleware,
) *ConsumptionHandler {
	return &ConsumptionHandler{
		consumptionService:   consumptionService,
		authMiddleware:       authMiddleware,
		machineKeyMiddleware: machineKeyMiddleware,
		rateLimitMiddleware:  rateLimitMiddleware,
	}
}

func (h *ConsumptionHandler) RegisterRoutes(router fiber.Router) {
	consumptionGroup := router.Group("/consumptions")

	consumptionGroup.Post("/scan",
		h.authMiddleware.RequireUser,
		h.rateLimitMiddleware.LimitByUser(middlewares.ScanLimit),
		h.Scan)

	// Machines poll this to learn a session produced a completed dispense.
	consumptionGroup.Get("/session/:sessionId",
		h.machineKeyMiddleware.RequireMachine,
		h.rateLimitMiddleware.LimitByMachine(middlewares.MachinePollLimit),
		h.GetBySession)
}

func (h *ConsumptionHandler) Scan(c *fiber.Ctx) error {
	var req models.VoucherConsumeRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	userID := c.Locals("user_id").(uuid.UUID)

	consumption, err := h.consumptionService.ProcessConsumption(&req, userID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, consumption)
}

func (h *ConsumptionHandler) GetBySession(c *fiber.Ctx) error {
	consumption, err := h.consumptionService.GetConsumptionBySession(c.Params("sessionId"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, consumption)
}
