package middlewares

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sipstack/vend-core/internal/app/errors"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/sipstack/vend-core/internal/app/services"
	"github.com/sipstack/vend-core/internal/infrastructures"
)

type AuthMiddleware struct {
	tokenService *services.TokenService
	jwtSecret    []byte
}

func NewAuthMiddleware(tokenService *services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		jwtSecret:    []byte(infrastructures.Config.JWT_SECRET),
	}
}

// RequireUser verifies the bearer token and consults the revocation store:
// both the exact-token blacklist and the user's logout-all watermark.
func (m *AuthMiddleware) RequireUser(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if header == "" {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError())
	}

	rawToken := strings.TrimPrefix(header, "Bearer ")

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewUnauthorizedError("Unexpected signing method")
		}
		return m.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid token"))
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid token subject"))
	}

	revoked, err := m.tokenService.IsRevoked(c.Context(), rawToken)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	if revoked {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Token has been revoked"))
	}

	issuedAt := time.Time{}
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	allRevoked, err := m.tokenService.AreAllRevoked(c.Context(), userID, issuedAt)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	if allRevoked {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("All sessions have been logged out"))
	}

	c.Locals("user_id", userID)
	c.Locals("token", rawToken)

	return c.Next()
}
