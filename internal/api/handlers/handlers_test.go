package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/kophyo6929/homietv/internal/config"
	"github.com/kophyo6929/homietv/internal/controllers"
	"github.com/kophyo6929/homietv/internal/models"
	"github.com/kophyo6929/homietv/internal/services/auth"
	"github.com/kophyo6929/homietv/internal/services/storage"
	"github.com/kophyo6929/homietv/internal/utils"
)

type testEnv struct {
	db      *models.Database
	authSvc *auth.Service
	content *controllers.ContentController

	home  *HomeHandler
	video *VideoHandler
	auth  *AuthHandler
	admin *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := utils.NewLogger("error")

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		AdminEmail:      "admin@example.test",
		SessionTTLHours: 1,
		UploadDir:       t.TempDir(),
		PublicBaseURL:   "http://example.test",
	}

	authSvc, err := auth.NewService(cfg, db, logger)
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}
	if err := authSvc.Bootstrap("secret"); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	catalog := controllers.NewCatalogController(db, logger)
	ads := controllers.NewAdsController(db, logger)
	content := controllers.NewContentController(db, store, catalog, ads, logger)

	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}

	return &testEnv{
		db:      db,
		authSvc: authSvc,
		content: content,
		home:    NewHomeHandler(catalog, ads, authSvc, renderer, logger),
		video:   NewVideoHandler(db, ads, authSvc, renderer, logger),
		auth:    NewAuthHandler(authSvc, renderer, logger),
		admin:   NewAdminHandler(db, content, authSvc, renderer, logger),
	}
}

// loginCookie signs the account in and returns its session cookie
func loginCookie(t *testing.T, env *testEnv, email, password string) *http.Cookie {
	t.Helper()

	session, err := env.authSvc.Login(email, password)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return &http.Cookie{Name: sessionCookie, Value: session.Token}
}

func TestHomePage(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.content.SaveVideo(controllers.VideoInput{
		Title: "Dune Part Two",
		Year:  "2024",
		Genre: "Sci-Fi",
	}, nil); err != nil {
		t.Fatalf("SaveVideo failed: %v", err)
	}

	rec := httptest.NewRecorder()
	env.home.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Dune Part Two") {
		t.Error("Listing page should contain the seeded title")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Unexpected content type %q", ct)
	}
}

func TestHomePageSearch(t *testing.T) {
	env := newTestEnv(t)

	for _, title := range []string{"Dune Part Two", "Barbie"} {
		if _, err := env.content.SaveVideo(controllers.VideoInput{
			Title: title,
			Year:  "2024",
			Genre: "Drama",
		}, nil); err != nil {
			t.Fatalf("SaveVideo failed: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	env.home.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?search=dune", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Dune Part Two") {
		t.Error("Search result missing the matching title")
	}
	if strings.Contains(body, "Barbie") {
		t.Error("Search result should not contain the non-matching title")
	}
}

func TestHomePageUnknownPath(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.home.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestVideoDetailPage(t *testing.T) {
	env := newTestEnv(t)

	video, err := env.content.SaveVideo(controllers.VideoInput{
		Title: "Dune Part Two",
		Year:  "2024",
		Genre: "Sci-Fi",
		Links: []controllers.LinkInput{
			{Server: "Yoteshin", Size: "2.1 GB", Resolution: "1080p", URL: "https://t.me/x"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("SaveVideo failed: %v", err)
	}

	rec := httptest.NewRecorder()
	env.video.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/video/"+strconv.FormatUint(video.ID, 10), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Dune Part Two") {
		t.Error("Detail page missing the title")
	}
	if !strings.Contains(body, "Yoteshin") {
		t.Error("Detail page missing the download link server")
	}
}

func TestVideoDetailNotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/video/999", "/video/abc", "/video/"} {
		rec := httptest.NewRecorder()
		env.video.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestAdminRequiresSignIn(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.admin.ServePanel(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth" {
		t.Errorf("Expected redirect to /auth, got %q", loc)
	}
}

func TestAdminRejectsNonAdmin(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.authSvc.Register("viewer@example.test", "secret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	cookie := loginCookie(t, env, "viewer@example.test", "secret")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.admin.ServePanel(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for a non-admin, got %d", rec.Code)
	}
}

func TestAdminPanel(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.content.SaveVideo(controllers.VideoInput{
		Title: "Dune Part Two",
		Year:  "2024",
		Genre: "Sci-Fi",
	}, nil); err != nil {
		t.Fatalf("SaveVideo failed: %v", err)
	}

	cookie := loginCookie(t, env, "admin@example.test", "secret")
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.admin.ServePanel(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Dune Part Two") {
		t.Error("Panel should list the stored video")
	}
}

func TestAdminDeleteVideo(t *testing.T) {
	env := newTestEnv(t)

	video, err := env.content.SaveVideo(controllers.VideoInput{
		Title: "Doomed",
		Year:  "2020",
		Genre: "Drama",
	}, nil)
	if err != nil {
		t.Fatalf("SaveVideo failed: %v", err)
	}

	cookie := loginCookie(t, env, "admin@example.test", "secret")
	form := url.Values{"id": {strconv.FormatUint(video.ID, 10)}}
	req := httptest.NewRequest(http.MethodPost, "/admin/videos/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.admin.DeleteVideo(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect, got %d", rec.Code)
	}
	if _, err := env.db.GetVideoByID(video.ID); err == nil {
		t.Error("Expected video removed")
	}
}

func TestLoginHandler(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"email": {"admin@example.test"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.auth.Login(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Expected redirect to /, got %q", loc)
	}

	var found bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			found = true
			if !cookie.HttpOnly {
				t.Error("Session cookie must be HttpOnly")
			}
		}
	}
	if !found {
		t.Error("Expected a session cookie")
	}
}

func TestLoginHandlerBadPassword(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"email": {"admin@example.test"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.auth.Login(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/auth?error=") {
		t.Errorf("Expected redirect back to /auth with an error, got %q", loc)
	}
}

func TestLogoutHandler(t *testing.T) {
	env := newTestEnv(t)

	cookie := loginCookie(t, env, "admin@example.test", "secret")
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.auth.Logout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect, got %d", rec.Code)
	}

	identity, err := env.authSvc.Resolve(cookie.Value)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if identity.Authenticated {
		t.Error("Session should be gone after logout")
	}
}

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler(utils.NewLogger("error"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("Unexpected health body %q", rec.Body.String())
	}
}
