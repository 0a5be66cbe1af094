package auth

import (
	"strings"

	"github.com/jacinta25/social-media-API/internal/apperror"
	"github.com/jacinta25/social-media-API/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// JWTMiddleware validates bearer access tokens and stores user_id in locals.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return apperror.Unauthorized("Authentication credentials were not provided.")
		}

		claims, err := parseClaims(secretBytes, token, tokenTypeAccess)
		if err != nil {
			return err
		}

		httpx.SetUserID(c, claims.UserID)
		return c.Next()
	}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
