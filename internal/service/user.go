// Package service contains the business logic layer.
//
// This file implements user registration, login, and session resolution.
// Sessions are opaque random tokens handed out once at login and stored
// as SHA-256 hashes.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ewaller/leadloop/internal/domain"
	"github.com/ewaller/leadloop/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt password hashing.
	BcryptCost = 12

	// SessionTokenBytes is the number of random bytes for session tokens.
	// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
	SessionTokenBytes = 32

	// SessionDuration is how long a session remains valid.
	SessionDuration = 7 * 24 * time.Hour

	// MinPasswordLength is the minimum password length.
	MinPasswordLength = 6
)

// =============================================================================
// Interface Definition
// =============================================================================

// UserService defines the interface for user and session operations.
type UserService interface {
	// Register creates a new account on the free plan.
	// Returns domain.ECONFLICT if the email already exists and
	// domain.EINVALID for validation errors.
	Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error)

	// Login authenticates a user and creates a new session.
	// Returns domain.EUNAUTHORIZED for invalid credentials.
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)

	// Logout invalidates a session by its raw token. Idempotent.
	Logout(ctx context.Context, token string) error

	// GetByID retrieves a user by ID.
	// Returns domain.ENOTFOUND if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetBySessionToken resolves a raw session token to its user.
	// Returns domain.EUNAUTHORIZED if the token is invalid or expired.
	GetBySessionToken(ctx context.Context, token string) (*domain.User, error)
}

// =============================================================================
// Implementation
// =============================================================================

type userService struct {
	queries repository.Querier
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(queries repository.Querier, logger *slog.Logger) UserService {
	return &userService{
		queries: queries,
		logger:  logger,
	}
}

// Register creates a new account on the free plan.
func (s *userService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error) {
	const op = "user.register"

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid(op, "a valid email address is required")
	}
	if len(params.Password) < MinPasswordLength {
		return nil, domain.Invalid(op, "password must be at least 6 characters")
	}

	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.Conflict(op, "an account with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, op, "failed to check existing email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	row, err := s.queries.CreateUser(ctx, repository.CreateUserParams{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         domain.ToNullString(strings.TrimSpace(params.Name)),
		Plan:         domain.PlanFree.String(),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create user")
	}

	user := userRowToDomain(row)
	s.logger.Info("user registered", "user_id", user.ID)
	return &user, nil
}

// Login authenticates a user and creates a new session.
func (s *userService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	const op = "user.login"

	row, err := s.queries.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Unauthorized(op, "invalid email or password")
		}
		return nil, domain.Internal(err, op, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		return nil, domain.Unauthorized(op, "invalid email or password")
	}

	token, tokenHash, err := newSessionToken()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate session token")
	}

	err = s.queries.CreateSession(ctx, repository.CreateSessionParams{
		ID:        uuid.New(),
		UserID:    row.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(SessionDuration),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create session")
	}

	user := userRowToDomain(row)
	s.logger.Info("user logged in", "user_id", user.ID)
	return &domain.LoginResult{User: &user, Token: token}, nil
}

// Logout invalidates a session by its raw token.
func (s *userService) Logout(ctx context.Context, token string) error {
	const op = "user.logout"

	if err := s.queries.DeleteSessionByTokenHash(ctx, hashToken(token)); err != nil {
		return domain.Internal(err, op, "failed to delete session")
	}
	return nil
}

// GetByID retrieves a user by ID.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "user.get"

	row, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "failed to fetch user")
	}

	user := userRowToDomain(row)
	return &user, nil
}

// GetBySessionToken resolves a raw session token to its user.
func (s *userService) GetBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	const op = "user.get_by_session"

	session, err := s.queries.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Unauthorized(op, "invalid session")
		}
		return nil, domain.Internal(err, op, "failed to fetch session")
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, domain.Unauthorized(op, "session expired")
	}

	return s.GetByID(ctx, session.UserID)
}

// newSessionToken generates a raw session token and its storage hash.
func newSessionToken() (token, tokenHash string, err error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, hashToken(token), nil
}

// hashToken returns the hex SHA-256 of a raw session token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
