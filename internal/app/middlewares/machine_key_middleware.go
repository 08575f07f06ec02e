package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sipstack/vend-core/internal/app/errors"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/sipstack/vend-core/internal/app/services"
)

// MachineKeyMiddleware authenticates vending machines on the dispense-poll
// endpoint via the X-Machine-QR / X-Dispense-Key header pair.
type MachineKeyMiddleware struct {
	machineService *services.MachineService
}

func NewMachineKeyMiddleware(machineService *services.MachineService) *MachineKeyMiddleware {
	return &MachineKeyMiddleware{machineService: machineService}
}

func (m *MachineKeyMiddleware) RequireMachine(c *fiber.Ctx) error {
	machineQR := c.Get("X-Machine-QR")
	dispenseKey := c.Get("X-Dispense-Key")
	if machineQR == "" || dispenseKey == "" {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Machine credentials required"))
	}

	machine, err := m.machineService.VerifyDispenseKey(machineQR, dispenseKey)
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid machine credentials"))
	}

	c.Locals("machine", machine)

	return c.Next()
}
