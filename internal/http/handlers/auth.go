package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"url2pdf/internal/domain"
	log "url2pdf/internal/infra/logging"
)

// InvalidCredentialsMessage does not say which field was wrong.
const InvalidCredentialsMessage = "Usuário ou senha inválidos"

// TokenIssuer exchanges credentials for a signed token.
type TokenIssuer interface {
	Login(usuario, senha string) (string, error)
}

// AuthHandler serves /login.
type AuthHandler struct {
	Issuer TokenIssuer
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(issuer TokenIssuer) *AuthHandler {
	return &AuthHandler{Issuer: issuer}
}

// HandleLogin returns {token} for valid credentials and 401 otherwise.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return SendError(c, fiber.StatusBadRequest, "body must be valid JSON")
	}

	token, err := h.Issuer.Login(req.Usuario, req.Senha)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			log.Warn("Login rejected", "ip", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": InvalidCredentialsMessage})
		}
		return err
	}
	return c.JSON(domain.LoginResponse{Token: token})
}
