package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kophyo6929/homietv/internal/controllers"
	"github.com/kophyo6929/homietv/internal/models"
	"github.com/kophyo6929/homietv/internal/services/auth"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
)

// VideoHandler renders the video detail page
type VideoHandler struct {
	db       *models.Database
	ads      *controllers.AdsController
	authSvc  *auth.Service
	renderer *Renderer
	logger   *logrus.Logger
}

// NewVideoHandler creates a new video detail handler
func NewVideoHandler(db *models.Database, ads *controllers.AdsController, authSvc *auth.Service, renderer *Renderer, logger *logrus.Logger) *VideoHandler {
	return &VideoHandler{
		db:       db,
		ads:      ads,
		authSvc:  authSvc,
		renderer: renderer,
		logger:   logger,
	}
}

type videoDetailData struct {
	Identity *auth.Identity
	Search   string

	Video *models.Video
	Cast  []*models.CastMember
	Links []*models.DownloadLink

	TopAd      *models.Advertisement
	BottomAd   *models.Advertisement
	DownloadAd *models.Advertisement
}

// ServeHTTP handles /video/{id}
func (h *VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/video/")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	video, err := h.db.GetVideoByID(id)
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.WithError(err).WithField("video_id", id).Error("Failed to fetch video")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := videoDetailData{
		Identity: resolveIdentity(r, h.authSvc, h.logger),
		Video:    video,
	}

	if data.Cast, err = h.db.GetCastByVideoID(id); err != nil {
		h.logger.WithError(err).Error("Failed to fetch cast")
	}
	if data.Links, err = h.db.GetLinksByVideoID(id); err != nil {
		h.logger.WithError(err).Error("Failed to fetch download links")
	}

	if ad, err := h.ads.ActiveAd(models.PlacementVideoTop); err == nil {
		data.TopAd = ad
	}
	if ad, err := h.ads.ActiveAd(models.PlacementVideoBottom); err == nil {
		data.BottomAd = ad
	}
	if ad, err := h.ads.ActiveAd(models.PlacementDownloadSection); err == nil {
		data.DownloadAd = ad
	}

	if err := h.renderer.Render(w, "detail.html", data); err != nil {
		h.logger.WithError(err).Error("Failed to render detail page")
	}
}
