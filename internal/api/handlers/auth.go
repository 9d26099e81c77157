package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/kophyo6929/homietv/internal/services/auth"
	"github.com/sirupsen/logrus"
)

// AuthHandler renders the sign-in page and handles login/logout
type AuthHandler struct {
	authSvc  *auth.Service
	renderer *Renderer
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *auth.Service, renderer *Renderer, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authSvc:  authSvc,
		renderer: renderer,
		logger:   logger,
	}
}

type authPageData struct {
	Identity *auth.Identity
	Search   string
	Error    string
}

// ServePage handles GET /auth
func (h *AuthHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity := resolveIdentity(r, h.authSvc, h.logger)
	if identity.Authenticated {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := authPageData{
		Identity: identity,
		Error:    r.URL.Query().Get("error"),
	}
	if err := h.renderer.Render(w, "auth.html", data); err != nil {
		h.logger.WithError(err).Error("Failed to render auth page")
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	session, err := h.authSvc.Login(email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Redirect(w, r, "/auth?error="+url.QueryEscape("Invalid email or password"), http.StatusSeeOther)
			return
		}
		h.logger.WithError(err).Error("Login failed")
		http.Redirect(w, r, "/auth?error="+url.QueryEscape("Sign in failed, please try again"), http.StatusSeeOther)
		return
	}

	setSessionCookie(w, session.Token, session.ExpiresAt)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.authSvc.Logout(sessionToken(r)); err != nil {
		h.logger.WithError(err).Error("Logout failed")
	}

	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
