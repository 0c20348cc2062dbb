package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arzan03/PalavraDoDia/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 10

type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	ExistsWithRole(ctx context.Context, role string) (bool, error)
	Create(ctx context.Context, account *models.Account) error
}

// Claims is the JWT payload: the account id and role.
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService checks credentials and issues and validates bearer tokens.
// Tokens are stateless; there is no revocation list.
type AuthService struct {
	accounts AccountRepository
	secret   []byte
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewAuthService(accounts AccountRepository, secret string, ttl time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		secret:   []byte(secret),
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// TTL is the lifetime of issued tokens.
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate looks the account up by exact email and checks the password.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *models.Account, error) {
	if email == "" || password == "" {
		return "", nil, &models.ValidationError{Message: "Email e senha são obrigatórios"}
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return "", nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("login lookup: %w", err)
	}

	if !VerifyPassword(password, account.Password) {
		return "", nil, models.ErrInvalidCredentials
	}

	token, err := s.IssueToken(account)
	if err != nil {
		return "", nil, err
	}

	public := account.Public()
	return token, &public, nil
}

// IssueToken signs an HS256 token carrying the account id and role.
func (s *AuthService) IssueToken(account *models.Account) (string, error) {
	now := s.now()
	claims := Claims{
		ID:   account.ID.Hex(),
		Role: account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the token and resolves the account it names. Every
// token problem, including an account that no longer exists, is reported
// as ErrUnauthorized.
func (s *AuthService) Validate(ctx context.Context, tokenString string) (*models.Account, error) {
	if tokenString == "" {
		return nil, models.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, models.ErrUnauthorized
	}

	account, err := s.accounts.FindByID(ctx, claims.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("resolve token account: %w", err)
	}

	public := account.Public()
	return &public, nil
}

// EnsureAdmin creates an admin account with the given credentials when no
// admin exists. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	exists, err := s.accounts.ExistsWithRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	account := &models.Account{
		Name:      name,
		Email:     email,
		Role:      models.RoleAdmin,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := models.NewValidationError("Administrador inválido", account.Validate(password)); err != nil {
		return false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	account.Password = hash

	if err := s.accounts.Create(ctx, account); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	s.log.WarnContext(ctx, "default admin account created; change its password",
		slog.String("email", email))
	return true, nil
}
