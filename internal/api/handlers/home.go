package handlers

import (
	"net/http"

	"github.com/kophyo6929/homietv/internal/controllers"
	"github.com/kophyo6929/homietv/internal/models"
	"github.com/kophyo6929/homietv/internal/services/auth"
	"github.com/sirupsen/logrus"
)

// HomeHandler renders the listing page
type HomeHandler struct {
	catalog  *controllers.CatalogController
	ads      *controllers.AdsController
	authSvc  *auth.Service
	renderer *Renderer
	logger   *logrus.Logger
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(catalog *controllers.CatalogController, ads *controllers.AdsController, authSvc *auth.Service, renderer *Renderer, logger *logrus.Logger) *HomeHandler {
	return &HomeHandler{
		catalog:  catalog,
		ads:      ads,
		authSvc:  authSvc,
		renderer: renderer,
		logger:   logger,
	}
}

type homeData struct {
	Identity *auth.Identity
	Search   string
	Filter   string

	Movies         []*models.Video
	Series         []*models.Video
	TrendingMovies []*models.Video
	TrendingSeries []*models.Video
	Total          int

	HeroAd    *models.Advertisement
	SidebarAd *models.Advertisement
}

// ServeHTTP handles the listing page, with optional search and
// movies/series filter query parameters
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	search := r.URL.Query().Get("search")
	filter := r.URL.Query().Get("filter")

	videos, err := h.catalog.FetchVideos(search)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch videos")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	movies, series := controllers.Partition(videos)

	data := homeData{
		Identity:       resolveIdentity(r, h.authSvc, h.logger),
		Search:         search,
		Filter:         filter,
		Movies:         movies,
		Series:         series,
		TrendingMovies: controllers.Trending(movies),
		TrendingSeries: controllers.Trending(series),
		Total:          len(videos),
	}

	// Missing ads fall back to the static placeholder in the template
	if ad, err := h.ads.ActiveAd(models.PlacementHero); err != nil {
		h.logger.WithError(err).Error("Failed to fetch hero ad")
	} else {
		data.HeroAd = ad
	}
	if ad, err := h.ads.ActiveAd(models.PlacementSidebar); err != nil {
		h.logger.WithError(err).Error("Failed to fetch sidebar ad")
	} else {
		data.SidebarAd = ad
	}

	if err := h.renderer.Render(w, "home.html", data); err != nil {
		h.logger.WithError(err).Error("Failed to render home page")
	}
}
