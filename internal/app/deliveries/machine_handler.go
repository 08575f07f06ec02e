package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sipstack/vend-core/internal/app/middlewares"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/sipstack/vend-core/internal/app/services"
)

type MachineHandler struct {
	machineService       *services.MachineService
	machineKeyMiddleware *middlewares.MachineKeyMiddleware
}

func NewMachineHandler(
	machineService *services.MachineService,
	machineKeyMiddleware *middlewares.MachineKeyMiddleware,
) *MachineHandler {
	return &MachineHandler{
		machineService:       machineService,
		machineKeyMiddleware: machineKeyMiddleware,
	}
}

func (h *MachineHandler) RegisterRoutes(router fiber.Router) {
	machineGroup := router.Group("/machines")

	machineGroup.Get("/validate/:qrCode", h.ValidateQR)
	machineGroup.Post("/sessions", h.machineKeyMiddleware.RequireMachine, h.IssueSession)
}

// ValidateQR lets a client check a machine can serve before scanning.
func (h *MachineHandler) ValidateQR(c *fiber.Ctx) error {
	machine, err := h.machineService.ValidateMachineQR(c.Params("qrCode"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, machine)
}

// IssueSession mints the QR payload a machine displays for one drink/price.
func (h *MachineHandler) IssueSession(c *fiber.Ctx) error {
	var req models.SessionIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	session, err := h.machineService.IssueSession(&req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, session)
}
