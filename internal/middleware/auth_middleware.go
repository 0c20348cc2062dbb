package middleware

import (
	"context"
	"strings"

	"github.com/arzan03/PalavraDoDia/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	TokenCookie = "token"
	accountKey  = "account"
)

type TokenValidator interface {
	Validate(ctx context.Context, token string) (*models.Account, error)
}

// ExtractToken reads the bearer token from the Authorization header, falling
// back to the token cookie.
func ExtractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer") {
		if parts := strings.Fields(header); len(parts) == 2 {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(TokenCookie)
}

// Protect rejects requests without a valid token and stores the resolved
// account for the next handlers. A request without any token never reaches
// the validator.
func Protect(v TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c)
		if token == "" {
			return models.ErrUnauthorized
		}

		account, err := v.Validate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(accountKey, account)
		return c.Next()
	}
}

// CurrentAccount returns the account stored by Protect.
func CurrentAccount(c *fiber.Ctx) (*models.Account, bool) {
	account, ok := c.Locals(accountKey).(*models.Account)
	return account, ok && account != nil
}
