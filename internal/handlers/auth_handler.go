package handlers

import (
	"errors"
	"time"

	"github.com/arzan03/PalavraDoDia/internal/metrics"
	"github.com/arzan03/PalavraDoDia/internal/middleware"
	"github.com/arzan03/PalavraDoDia/internal/models"
	"github.com/arzan03/PalavraDoDia/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth          *services.AuthService
	metrics       *metrics.Metrics
	secureCookies bool
}

func NewAuthHandler(auth *services.AuthService, m *metrics.Metrics, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: m, secureCookies: secureCookies}
}

// Login checks the credentials and returns a token, also set as an HttpOnly
// cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&request); err != nil {
		return invalidBody()
	}

	token, account, err := h.auth.Authenticate(c.UserContext(), request.Email, request.Password)
	switch {
	case err == nil:
		h.metrics.LoginAttempt("success")
	case errors.Is(err, models.ErrInvalidCredentials):
		h.metrics.LoginAttempt("invalid_credentials")
		return err
	default:
		h.metrics.LoginAttempt("error")
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.auth.TTL()),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(Envelope{Success: true, Token: token, Data: account})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		return models.ErrUnauthorized
	}
	return respond(c, fiber.StatusOK, account)
}
