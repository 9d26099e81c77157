package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kophyo6929/homietv/internal/controllers"
	"github.com/kophyo6929/homietv/internal/models"
	"github.com/kophyo6929/homietv/internal/services/auth"
	"github.com/sirupsen/logrus"
)

// maxUploadBytes caps poster and ad media uploads
const maxUploadBytes = 32 << 20 // 32MB

// Placements lists every advertisement slot, in render order for the
// admin form
var Placements = []models.Placement{
	models.PlacementHeader,
	models.PlacementHero,
	models.PlacementSidebar,
	models.PlacementVideoTop,
	models.PlacementVideoBottom,
	models.PlacementDownloadSection,
	models.PlacementFooter,
}

// AdminHandler serves the gated admin panel and its mutations
type AdminHandler struct {
	db       *models.Database
	content  *controllers.ContentController
	authSvc  *auth.Service
	renderer *Renderer
	logger   *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *models.Database, content *controllers.ContentController, authSvc *auth.Service, renderer *Renderer, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		db:       db,
		content:  content,
		authSvc:  authSvc,
		renderer: renderer,
		logger:   logger,
	}
}

type adminPageData struct {
	Identity *auth.Identity
	Search   string
	Notice   string
	Error    string

	Videos []*models.Video
	Ads    []*models.Advertisement

	EditVideo      *models.Video
	EditVideoLinks []*models.DownloadLink
	EditAd         *models.Advertisement

	Placements []models.Placement
}

// requireAdmin gates a request. An anonymous caller is redirected to
// the sign-in page, an authenticated non-admin gets the denial page.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) *auth.Identity {
	identity := resolveIdentity(r, h.authSvc, h.logger)
	if !identity.Authenticated {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return nil
	}
	if !identity.IsAdmin {
		w.WriteHeader(http.StatusForbidden)
		if err := h.renderer.Render(w, "denied.html", authPageData{Identity: identity}); err != nil {
			h.logger.WithError(err).Error("Failed to render denial page")
		}
		return nil
	}
	return identity
}

// ServePanel handles GET /admin
func (h *AdminHandler) ServePanel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity := h.requireAdmin(w, r)
	if identity == nil {
		return
	}

	data := adminPageData{
		Identity:   identity,
		Notice:     r.URL.Query().Get("notice"),
		Error:      r.URL.Query().Get("error"),
		Placements: Placements,
	}

	var err error
	if data.Videos, err = h.db.GetAllVideos(); err != nil {
		h.logger.WithError(err).Error("Failed to fetch videos")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if data.Ads, err = h.db.GetAllAds(); err != nil {
		h.logger.WithError(err).Error("Failed to fetch ads")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// ?video=ID / ?ad=ID open the edit form pre-filled
	if id := parseID(r.URL.Query().Get("video")); id != 0 {
		if video, err := h.db.GetVideoByID(id); err == nil {
			data.EditVideo = video
			if links, err := h.db.GetLinksByVideoID(id); err == nil {
				data.EditVideoLinks = links
			}
		}
	}
	if id := parseID(r.URL.Query().Get("ad")); id != 0 {
		if ad, err := h.db.GetAdByID(id); err == nil {
			data.EditAd = ad
		}
	}

	if err := h.renderer.Render(w, "admin.html", data); err != nil {
		h.logger.WithError(err).Error("Failed to render admin page")
	}
}

// SaveVideo handles POST /admin/videos/save
func (h *AdminHandler) SaveVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.requireAdmin(w, r) == nil {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.redirectError(w, r, "", fmt.Sprintf("Invalid form: %v", err))
		return
	}

	input := controllers.VideoInput{
		ID:           parseID(r.FormValue("id")),
		Title:        r.FormValue("title"),
		Year:         r.FormValue("year"),
		Genre:        r.FormValue("genre"),
		PosterURL:    r.FormValue("poster_url"),
		Director:     r.FormValue("director"),
		Synopsis:     r.FormValue("synopsis"),
		Rating:       r.FormValue("rating"),
		Duration:     r.FormValue("duration"),
		IsSeries:     r.FormValue("is_series") != "",
		TelegramLink: r.FormValue("telegram_link"),
		Cast:         r.FormValue("cast"),
	}

	if input.IsSeries {
		if seasons, err := strconv.Atoi(r.FormValue("seasons")); err == nil && seasons > 0 {
			input.Seasons = &seasons
		}
	}

	servers := r.Form["link_server"]
	sizes := r.Form["link_size"]
	resolutions := r.Form["link_resolution"]
	badges := r.Form["link_resolution_img"]
	urls := r.Form["link_url"]
	for i := range urls {
		link := controllers.LinkInput{URL: urls[i]}
		if i < len(servers) {
			link.Server = servers[i]
		}
		if i < len(sizes) {
			link.Size = sizes[i]
		}
		if i < len(resolutions) {
			link.Resolution = resolutions[i]
		}
		if i < len(badges) {
			link.ResolutionImg = badges[i]
		}
		input.Links = append(input.Links, link)
	}

	poster, err := formUpload(r, "poster")
	if err != nil {
		h.redirectError(w, r, videoQuery(input.ID), fmt.Sprintf("Poster upload failed: %v", err))
		return
	}

	saved, err := h.content.SaveVideo(input, poster)
	if err != nil {
		h.logger.WithError(err).Error("Failed to save video")
		h.redirectError(w, r, videoQuery(input.ID), fmt.Sprintf("Failed to save video: %v", err))
		return
	}

	notice := "Video added!"
	if input.ID != 0 {
		notice = "Video updated!"
	}
	h.logger.WithField("video_id", saved.ID).Debug("Video save handled")
	http.Redirect(w, r, "/admin?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

// DeleteVideo handles POST /admin/videos/delete
func (h *AdminHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.requireAdmin(w, r) == nil {
		return
	}

	id := parseID(r.FormValue("id"))
	if id == 0 {
		h.redirectError(w, r, "", "Missing video id")
		return
	}

	if err := h.content.DeleteVideo(id); err != nil {
		h.logger.WithError(err).Error("Failed to delete video")
		h.redirectError(w, r, "", "Failed to delete video")
		return
	}

	http.Redirect(w, r, "/admin?notice="+url.QueryEscape("Video deleted successfully"), http.StatusSeeOther)
}

// SaveAd handles POST /admin/ads/save
func (h *AdminHandler) SaveAd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.requireAdmin(w, r) == nil {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.redirectError(w, r, "", fmt.Sprintf("Invalid form: %v", err))
		return
	}

	displayOrder, _ := strconv.Atoi(r.FormValue("display_order"))
	input := controllers.AdInput{
		ID:           parseID(r.FormValue("id")),
		Title:        r.FormValue("title"),
		Placement:    models.Placement(r.FormValue("placement")),
		TargetURL:    r.FormValue("target_url"),
		MediaURL:     r.FormValue("media_url"),
		MediaType:    models.MediaType(r.FormValue("media_type")),
		IsActive:     r.FormValue("is_active") != "",
		DisplayOrder: displayOrder,
	}

	media, err := formUpload(r, "media")
	if err != nil {
		h.redirectError(w, r, adQuery(input.ID), fmt.Sprintf("Media upload failed: %v", err))
		return
	}

	if _, err := h.content.SaveAd(input, media); err != nil {
		h.logger.WithError(err).Error("Failed to save ad")
		h.redirectError(w, r, adQuery(input.ID), fmt.Sprintf("Failed to save ad: %v", err))
		return
	}

	notice := "Advertisement added!"
	if input.ID != 0 {
		notice = "Advertisement updated!"
	}
	http.Redirect(w, r, "/admin?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

// DeleteAd handles POST /admin/ads/delete
func (h *AdminHandler) DeleteAd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.requireAdmin(w, r) == nil {
		return
	}

	id := parseID(r.FormValue("id"))
	if id == 0 {
		h.redirectError(w, r, "", "Missing ad id")
		return
	}

	if err := h.content.DeleteAd(id); err != nil {
		h.logger.WithError(err).Error("Failed to delete ad")
		h.redirectError(w, r, "", "Failed to delete ad")
		return
	}

	http.Redirect(w, r, "/admin?notice="+url.QueryEscape("Advertisement deleted"), http.StatusSeeOther)
}

// redirectError sends the caller back to the panel with the error
// notice; extraQuery reopens the form that failed so input is retained
func (h *AdminHandler) redirectError(w http.ResponseWriter, r *http.Request, extraQuery, message string) {
	target := "/admin?error=" + url.QueryEscape(message)
	if extraQuery != "" {
		target += "&" + extraQuery
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// formUpload reads an optional uploaded file from a multipart form.
// A missing file is not an error.
func formUpload(r *http.Request, field string) (*controllers.Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &controllers.Upload{Filename: header.Filename, Data: data}, nil
}

// parseID parses a form or query id, returning 0 when absent or invalid
func parseID(value string) uint64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func videoQuery(id uint64) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("video=%d", id)
}

func adQuery(id uint64) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("ad=%d", id)
}
