package handlers

import (
	"net/http"
	"time"

	"github.com/kophyo6929/homietv/internal/services/auth"
	"github.com/sirupsen/logrus"
)

const sessionCookie = "homietv_session"

// sessionToken extracts the session token from the request cookie
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setSessionCookie writes the session cookie
func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie removes the session cookie
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// resolveIdentity resolves the request's session. Resolution failures
// degrade to an anonymous identity so public pages keep rendering.
func resolveIdentity(r *http.Request, authSvc *auth.Service, logger *logrus.Logger) *auth.Identity {
	identity, err := authSvc.Resolve(sessionToken(r))
	if err != nil {
		logger.WithError(err).Error("Failed to resolve session")
		return &auth.Identity{}
	}
	return identity
}
