// Package auth handles accounts and sessions: password hashing, signed
// session cookies, registration, login and the gin guard for protected routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/db"
	"github.com/atharvakonge/paper-trader/internal/log"
	"github.com/atharvakonge/paper-trader/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// bcrypt refuses passwords longer than this.
const maxPasswordBytes = 72

type Service struct {
	store      db.Store
	bcryptCost int
}

func NewService(store db.Store, bcryptCost int) *Service {
	return &Service{store: store, bcryptCost: bcryptCost}
}

// Register creates an account. Email is trimmed and lower-cased, username trimmed.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if email == "" || username == "" || req.Password == "" {
		return nil, apperrs.ErrMissingSignup
	}
	if !usernamePattern.MatchString(username) {
		return nil, apperrs.ErrBadUsername
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, apperrs.ErrBadPassword
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{Email: email, Username: username, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, apperrs.ErrEmailTaken) || errors.Is(err, apperrs.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrs.ErrMissingCredentials
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, apperrs.ErrNotFound) {
		return nil, apperrs.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(u.PasswordHash, req.Password) {
		return nil, apperrs.ErrInvalidCredentials
	}
	return u, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func IdentityOf(u *models.User) models.Identity {
	return models.Identity{UserID: u.ID, Email: u.Email, Username: u.Username}
}
