package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the username is unknown or the
// password does not match. Callers must not distinguish the two cases.
var ErrInvalidCredentials = errors.New("invalid credentials")

const bcryptCost = 10

// User is an operator account scoped to a single tenant.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	TenantID     string    `json:"tenant_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserRepository interface {
	GetByUsername(ctx context.Context, tenantID, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, tenantID, username, passwordHash string) error
}

// LoginService authenticates users and issues session tokens.
type LoginService struct {
	users    UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewLoginService(users UserRepository, secret []byte, tokenTTL time.Duration) *LoginService {
	return &LoginService{users: users, secret: secret, tokenTTL: tokenTTL}
}

// Login verifies the password for the given tenant-scoped username and
// returns a signed token on success.
func (s *LoginService) Login(ctx context.Context, tenantID, username, password string) (string, *User, error) {
	user, err := s.users.GetByUsername(ctx, tenantID, username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := IssueToken(s.secret, user.Username, user.Role, user.TenantID, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}

// SetPassword replaces the stored password hash for a user.
func (s *LoginService) SetPassword(ctx context.Context, tenantID, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, tenantID, username, hash)
}

// CreateUser registers a new operator account with a hashed password.
func (s *LoginService) CreateUser(ctx context.Context, tenantID, username, password, role string) (*User, error) {
	if role != RoleAdmin && role != RoleIntake {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		TenantID:     tenantID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
