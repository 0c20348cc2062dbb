package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	MaxNameLength     = 50
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// Account is an authenticated user of the admin interface. Password holds
// the bcrypt hash and is never serialized to clients.
type Account struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Public returns a copy of the account without the password hash.
func (a Account) Public() Account {
	a.Password = ""
	return a
}

// ValidEmail reports whether email has the local@domain.tld shape accepted
// for accounts.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate checks the account fields together with the plaintext password
// that is about to be hashed into it.
func (a *Account) Validate(plaintext string) []FieldError {
	var errs []FieldError

	a.Name = strings.TrimSpace(a.Name)
	switch {
	case a.Name == "":
		errs = append(errs, FieldError{Field: "name", Message: "Por favor, informe um nome"})
	case utf8.RuneCountInString(a.Name) > MaxNameLength:
		errs = append(errs, FieldError{Field: "name", Message: "Nome não pode ter mais de 50 caracteres"})
	}

	switch {
	case a.Email == "":
		errs = append(errs, FieldError{Field: "email", Message: "Por favor, informe um email"})
	case !ValidEmail(a.Email):
		errs = append(errs, FieldError{Field: "email", Message: "Por favor, informe um email válido"})
	}

	switch {
	case plaintext == "":
		errs = append(errs, FieldError{Field: "password", Message: "Por favor, informe uma senha"})
	case len(plaintext) < MinPasswordLength:
		errs = append(errs, FieldError{Field: "password", Message: "Senha deve ter pelo menos 6 caracteres"})
	}

	if a.Role == "" {
		a.Role = RoleUser
	}
	if a.Role != RoleUser && a.Role != RoleAdmin {
		errs = append(errs, FieldError{Field: "role", Message: "Perfil inválido"})
	}

	return errs
}
