package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kophyo6929/homietv/internal/config"
	"github.com/kophyo6929/homietv/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when email or password do not match
var ErrInvalidCredentials = errors.New("invalid email or password")

// Identity is the result of resolving a session token
type Identity struct {
	Authenticated bool
	UserID        uint64
	Email         string
	IsAdmin       bool
}

// Service handles sign-in sessions and admin privilege resolution
type Service struct {
	db         *models.Database
	adminEmail string
	sessionTTL time.Duration
	logger     *logrus.Logger
}

// NewService creates a new auth service
func NewService(cfg *config.Config, db *models.Database, logger *logrus.Logger) (*Service, error) {
	if cfg.AdminEmail == "" {
		return nil, fmt.Errorf("admin email is required")
	}

	return &Service{
		db:         db,
		adminEmail: strings.ToLower(cfg.AdminEmail),
		sessionTTL: time.Duration(cfg.SessionTTLHours) * time.Hour,
		logger:     logger,
	}, nil
}

// Bootstrap ensures the configured admin account exists with the admin
// role. Runs once at startup; an existing account is left untouched.
func (s *Service) Bootstrap(adminPassword string) error {
	_, err := s.db.GetUserByEmail(s.adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, bolthold.ErrNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	if adminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required to create the admin account")
	}

	user, err := s.Register(s.adminEmail, adminPassword)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	if err := s.db.CreateUserRole(&models.UserRole{UserID: user.ID, Role: models.RoleAdmin}); err != nil {
		return fmt.Errorf("failed to assign admin role: %w", err)
	}

	s.logger.WithField("email", s.adminEmail).Info("Admin account created")
	return nil
}

// Register creates a new user with a bcrypt password hash
func (s *Service) Register(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	if _, err := s.db.GetUserByEmail(email); err == nil {
		return nil, fmt.Errorf("account already exists for %s", email)
	} else if !errors.Is(err, bolthold.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and creates a new session
func (s *Service) Login(email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.db.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.db.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.WithField("email", user.Email).Info("User signed in")
	return session, nil
}

// Logout clears a session. An unknown token is not an error.
func (s *Service) Logout(token string) error {
	if token == "" {
		return nil
	}
	if err := s.db.DeleteSession(token); err != nil && !errors.Is(err, bolthold.ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Resolve turns a session token into an identity. The configured admin
// email grants the admin privilege without a role lookup; all other
// accounts are checked against the role table.
func (s *Service) Resolve(token string) (*Identity, error) {
	if token == "" {
		return &Identity{}, nil
	}

	session, err := s.db.GetSession(token)
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return &Identity{}, nil
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Expired(time.Now()) {
		return &Identity{}, nil
	}

	identity := &Identity{
		Authenticated: true,
		UserID:        session.UserID,
		Email:         session.Email,
	}

	if strings.EqualFold(session.Email, s.adminEmail) {
		identity.IsAdmin = true
		return identity, nil
	}

	isAdmin, err := s.db.UserHasRole(session.UserID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to look up role: %w", err)
	}
	identity.IsAdmin = isAdmin

	return identity, nil
}
