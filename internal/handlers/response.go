package handlers

import (
	"errors"
	"log/slog"

	"github.com/arzan03/PalavraDoDia/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	msgUnauthorized       = "Acesso não autorizado. Faça login para continuar."
	msgInvalidCredentials = "Credenciais inválidas"
	msgNotFound           = "Palavra não encontrada"
	msgDuplicateEmail     = "Email já cadastrado"
	msgInternal           = "Erro interno do servidor"
	msgInvalidBody        = "Corpo da requisição inválido"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Token   string              `json:"token,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []models.FieldError `json:"errors,omitempty"`
}

// PageEnvelope is the envelope of listings; data is always present, even
// when empty.
type PageEnvelope struct {
	Success     bool  `json:"success"`
	Data        any   `json:"data"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

func invalidBody() error {
	return &models.ValidationError{Message: msgInvalidBody}
}

// ErrorHandler turns any error returned by a handler or middleware into an
// error envelope.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, env := errorEnvelope(err)
		if status >= fiber.StatusInternalServerError {
			log.ErrorContext(c.UserContext(), "request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
		}
		return c.Status(status).JSON(env)
	}
}

func errorEnvelope(err error) (int, Envelope) {
	var verr *models.ValidationError
	var ferr *fiber.Error

	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, Envelope{Message: verr.Error(), Errors: verr.Fields}
	case errors.Is(err, models.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, Envelope{Message: msgInvalidCredentials}
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusUnauthorized, Envelope{Message: msgUnauthorized}
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound, Envelope{Message: msgNotFound}
	case errors.Is(err, models.ErrDuplicateEmail):
		return fiber.StatusConflict, Envelope{Message: msgDuplicateEmail}
	case errors.As(err, &ferr):
		return ferr.Code, Envelope{Message: ferr.Message}
	default:
		return fiber.StatusInternalServerError, Envelope{Message: msgInternal}
	}
}
