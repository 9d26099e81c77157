package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kophyo6929/homietv/internal/config"
	"github.com/kophyo6929/homietv/internal/models"
	"github.com/kophyo6929/homietv/internal/utils"
)

func newTestService(t *testing.T) (*Service, *models.Database) {
	t.Helper()

	logger := utils.NewLogger("error")
	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	service, err := NewService(&config.Config{
		AdminEmail:      "Admin@Example.Test",
		SessionTTLHours: 1,
	}, db, logger)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return service, db
}

func TestBootstrapCreatesAdmin(t *testing.T) {
	service, db := newTestService(t)

	if err := service.Bootstrap("secret"); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	user, err := db.GetUserByEmail("admin@example.test")
	if err != nil {
		t.Fatalf("Admin account missing: %v", err)
	}
	isAdmin, err := db.UserHasRole(user.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("UserHasRole failed: %v", err)
	}
	if !isAdmin {
		t.Error("Expected admin role assigned")
	}

	// A second run must not require a password or touch the account
	if err := service.Bootstrap(""); err != nil {
		t.Fatalf("Bootstrap rerun failed: %v", err)
	}
}

func TestBootstrapRequiresPassword(t *testing.T) {
	service, _ := newTestService(t)

	if err := service.Bootstrap(""); err == nil {
		t.Error("Expected first bootstrap without a password to fail")
	}
}

func TestLogin(t *testing.T) {
	service, _ := newTestService(t)

	if err := service.Bootstrap("secret"); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	session, err := service.Login("admin@example.test", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.Token == "" {
		t.Error("Expected a session token")
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("Expected a future expiry")
	}

	if _, err := service.Login("admin@example.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for a wrong password, got %v", err)
	}
	if _, err := service.Login("nobody@example.test", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for an unknown account, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	service, db := newTestService(t)

	if err := service.Bootstrap("secret"); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	session, err := service.Login("admin@example.test", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	identity, err := service.Resolve(session.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !identity.Authenticated || !identity.IsAdmin {
		t.Errorf("Expected authenticated admin identity, got %+v", identity)
	}
	if identity.Email != "admin@example.test" {
		t.Errorf("Unexpected identity email %q", identity.Email)
	}

	// Empty and unknown tokens resolve to anonymous, not errors
	for _, token := range []string{"", "no-such-token"} {
		identity, err := service.Resolve(token)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", token, err)
		}
		if identity.Authenticated {
			t.Errorf("Resolve(%q) should be anonymous, got %+v", token, identity)
		}
	}

	// An expired session also resolves to anonymous
	expired := &models.Session{
		Token:     "expired-token",
		UserID:    identity.UserID,
		Email:     "admin@example.test",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := db.CreateSession(expired); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	got, err := service.Resolve(expired.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Authenticated {
		t.Errorf("Expired session should be anonymous, got %+v", got)
	}
}

func TestResolveAdminEmailShortCircuit(t *testing.T) {
	service, db := newTestService(t)

	// The configured admin email is privileged even without a role row
	if _, err := service.Register("admin@example.test", "secret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	session, err := service.Login("admin@example.test", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	identity, err := service.Resolve(session.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !identity.IsAdmin {
		t.Error("Configured admin email should be privileged without a role row")
	}

	// A regular account without a role row stays non-admin
	if _, err := service.Register("viewer@example.test", "secret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	viewerSession, err := service.Login("viewer@example.test", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	viewer, err := service.Resolve(viewerSession.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if viewer.IsAdmin {
		t.Error("Regular account must not be admin")
	}

	// Granting the role flips the result
	if err := db.CreateUserRole(&models.UserRole{UserID: viewer.UserID, Role: models.RoleAdmin}); err != nil {
		t.Fatalf("CreateUserRole failed: %v", err)
	}
	viewer, err = service.Resolve(viewerSession.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !viewer.IsAdmin {
		t.Error("Role row should grant admin")
	}
}

func TestLogout(t *testing.T) {
	service, _ := newTestService(t)

	if err := service.Bootstrap("secret"); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	session, err := service.Login("admin@example.test", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := service.Logout(session.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	identity, err := service.Resolve(session.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if identity.Authenticated {
		t.Error("Session should be gone after logout")
	}

	// Logging out twice or with no token is harmless
	if err := service.Logout(session.Token); err != nil {
		t.Errorf("Repeated logout failed: %v", err)
	}
	if err := service.Logout(""); err != nil {
		t.Errorf("Empty-token logout failed: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	service, _ := newTestService(t)

	if _, err := service.Register("", "secret"); err == nil {
		t.Error("Expected empty email rejected")
	}
	if _, err := service.Register("a@example.test", ""); err == nil {
		t.Error("Expected empty password rejected")
	}

	if _, err := service.Register("a@example.test", "secret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := service.Register("A@Example.Test", "secret"); err == nil {
		t.Error("Expected duplicate email rejected case-insensitively")
	}
}
