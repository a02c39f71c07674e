package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"

	"url2pdf/internal/auth"
	"url2pdf/internal/domain"
	log "url2pdf/internal/infra/logging"
)

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireBearer rejects requests without a valid "Authorization: Bearer" JWT.
// The decoded claims are not passed downstream.
func RequireBearer(v TokenVerifier) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		ContextKey: "token",
		Validator: func(c *fiber.Ctx, key string) (bool, error) {
			if _, err := v.Verify(key); err != nil {
				return false, err
			}
			return true, nil
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// keyauth may pass a nil error.
			msg := "Invalid or expired token"
			switch {
			case err == nil:
			case errors.Is(err, keyauth.ErrMissingOrMalformedAPIKey):
				msg = "Missing or malformed bearer token"
			case errors.Is(err, domain.ErrUnauthorized):
				msg = err.Error()
			}
			log.Warn("Unauthorized request", "path", c.Path(), "reason", msg)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"statusCode": fiber.StatusUnauthorized,
				"error":      "Unauthorized",
				"message":    msg,
			})
		},
	})
}
