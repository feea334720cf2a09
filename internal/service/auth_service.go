package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/doit-backend/internal/auth"
	"github.com/Tomlord1122/doit-backend/internal/domain"
	"github.com/Tomlord1122/doit-backend/internal/repository"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

// RegisterRequest holds the data needed to create an account.
type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

// LoginRequest holds the credentials for signing in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthService creates accounts and issues bearer tokens.
type AuthService interface {
	// Register creates an account and signs it in.
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)

	// Authenticate checks credentials. Unknown usernames and wrong passwords
	// fail the same way.
	Authenticate(ctx context.Context, req LoginRequest) (*AuthResponse, error)

	CurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error)

	// Logout revokes the token described by claims.
	Logout(ctx context.Context, claims *auth.Claims) error

	// DeleteAccount removes the user and all of their categories and todos.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	users         repository.UserRepository
	tokens        *auth.TokenIssuer
	revoked       auth.RevocationList
	signupEnabled bool
}

// NewAuthService wires the identity store. revoked may be nil.
// signupEnabled is read once from configuration at startup.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, revoked auth.RevocationList, signupEnabled bool) AuthService {
	return &authService{
		users:         users,
		tokens:        tokens,
		revoked:       revoked,
		signupEnabled: signupEnabled,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// spendHashTime runs a bcrypt comparison for unknown usernames so the
// response time does not reveal whether an account exists.
func spendHashTime(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = auth.HashPassword("doit-placeholder-password")
	})
	auth.CheckPassword(dummyHash, password)
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if !s.signupEnabled {
		return nil, domain.Forbidden("Signup is currently disabled")
	}
	if req.Username == "" || req.Password == "" {
		return nil, domain.InvalidInput("Username and password are required")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return nil, domain.InvalidInput(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, domain.InvalidInput(fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}

	_, err := s.users.FindByUsername(ctx, req.Username)
	if err == nil {
		return nil, domain.Conflict("Username already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up username: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         emptyToNil(req.Name),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, domain.Conflict("Username already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user, "User created successfully")
}

func (s *authService) Authenticate(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.InvalidInput("Username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			spendHashTime(req.Password)
			return nil, domain.Unauthorized("Invalid username or password")
		}
		return nil, fmt.Errorf("look up username: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, domain.Unauthorized("Invalid username or password")
	}

	return s.issue(user, "Login successful")
}

func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Unauthorized("User not found")
		}
		return nil, fmt.Errorf("fetch user %s: %w", userID, err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return domain.Unauthorized("Authentication required")
	}
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *authService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	err := s.users.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Unauthorized("User not found")
		}
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	log.Printf("Deleted account %s", userID)
	return nil
}

func (s *authService) issue(user *domain.User, message string) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Message: message,
		Token:   token,
		User:    toUserResponse(user),
	}, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
