package models

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("palavra não encontrada")
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrUnauthorized       = errors.New("acesso não autorizado")
	ErrDuplicateEmail     = errors.New("email já cadastrado")
)

// FieldError describes a single invalid or missing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field-level problem found in a request.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return e.Message + ": " + strings.Join(names, ", ")
}

// NewValidationError returns nil when fields is empty so callers can
// return its result directly.
func NewValidationError(msg string, fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Message: msg, Fields: fields}
}
