package handlers

import (
	"net/http"

	"github.com/kophyo6929/homietv/internal/services/auth"
	"github.com/sirupsen/logrus"
)

// PagesHandler renders the static informational pages
type PagesHandler struct {
	authSvc  *auth.Service
	renderer *Renderer
	logger   *logrus.Logger
}

// NewPagesHandler creates a new static pages handler
func NewPagesHandler(authSvc *auth.Service, renderer *Renderer, logger *logrus.Logger) *PagesHandler {
	return &PagesHandler{
		authSvc:  authSvc,
		renderer: renderer,
		logger:   logger,
	}
}

type staticPageData struct {
	Identity *auth.Identity
	Search   string
}

// Contact handles GET /contact
func (h *PagesHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "contact.html")
}

// Policy handles GET /policy
func (h *PagesHandler) Policy(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "policy.html")
}

func (h *PagesHandler) serve(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := staticPageData{Identity: resolveIdentity(r, h.authSvc, h.logger)}
	if err := h.renderer.Render(w, name, data); err != nil {
		h.logger.WithError(err).WithField("page", name).Error("Failed to render static page")
	}
}
