package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sipstack/vend-core/internal/app/middlewares"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/sipstack/vend-core/internal/app/services"
)

// AuthHandler exposes the revocation operations. Login and OTP delivery
// live in a separate service; this API only invalidates tokens it is
// presented with.
type AuthHandler struct {
	tokenService   *services.TokenService
	authMiddleware *middlewares.AuthMiddleware
}

func NewAuthHandler(tokenService *services.TokenService, authMiddleware *middlewares.AuthMiddleware) *AuthHandler {
	return &AuthHandler{
		tokenService:   tokenService,
		authMiddleware: authMiddleware,
	}
}

func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authGroup := router.Group("/auth", h.authMiddleware.RequireUser)

	authGroup.Post("/logout", h.Logout)
	authGroup.Post("/logout-all", h.LogoutAll)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req models.LogoutRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return pkg.ErrorResponse(c, err)
	}

	userID := c.Locals("user_id").(uuid.UUID)
	token := c.Locals("token").(string)

	reason := "logout"
	if req.Reason != nil {
		reason = *req.Reason
	}

	if err := h.tokenService.Blacklist(c.Context(), token, userID, reason); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse[any](c, nil)
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	var req models.LogoutRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return pkg.ErrorResponse(c, err)
	}

	userID := c.Locals("user_id").(uuid.UUID)

	reason := "logout all devices"
	if req.Reason != nil {
		reason = *req.Reason
	}

	if err := h.tokenService.BlacklistAll(c.Context(), userID, reason); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse[any](c, nil)
}
