package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/kophyo6929/homietv/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// trendingLimit caps the "trending" slice of each partition
const trendingLimit = 10

// CatalogController serves the public video listing. Results are held in
// an advisory cache that admin mutations flush; the cache never outlives
// a write.
type CatalogController struct {
	db     *models.Database
	cache  *gocache.Cache
	logger *logrus.Logger
}

// NewCatalogController creates a new catalog controller
func NewCatalogController(db *models.Database, logger *logrus.Logger) *CatalogController {
	return &CatalogController{
		db:     db,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
		logger: logger,
	}
}

// FetchVideos returns all videos ordered by creation time descending.
// A non-empty search term keeps only rows whose title or genre contains
// it case-insensitively.
func (c *CatalogController) FetchVideos(term string) ([]*models.Video, error) {
	term = strings.TrimSpace(term)
	key := "videos:" + strings.ToLower(term)

	if cached, ok := c.cache.Get(key); ok {
		return cached.([]*models.Video), nil
	}

	videos, err := c.db.GetAllVideos()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch videos: %w", err)
	}

	if term != "" {
		needle := strings.ToLower(term)
		filtered := make([]*models.Video, 0, len(videos))
		for _, v := range videos {
			if strings.Contains(strings.ToLower(v.Title), needle) ||
				strings.Contains(strings.ToLower(v.Genre), needle) {
				filtered = append(filtered, v)
			}
		}
		videos = filtered
	}

	c.cache.Set(key, videos, gocache.DefaultExpiration)

	c.logger.WithFields(logrus.Fields{
		"term":  term,
		"count": len(videos),
	}).Debug("Fetched videos")

	return videos, nil
}

// Partition splits videos into movies and series by the IsSeries flag.
// Both slices are views over the input; the input is not mutated and
// every video lands in exactly one slice.
func Partition(videos []*models.Video) (movies, series []*models.Video) {
	for _, v := range videos {
		if v.IsSeries {
			series = append(series, v)
		} else {
			movies = append(movies, v)
		}
	}
	return movies, series
}

// Trending returns the first entries of an already-ordered slice,
// capped at the trending limit
func Trending(videos []*models.Video) []*models.Video {
	if len(videos) > trendingLimit {
		return videos[:trendingLimit]
	}
	return videos
}

// Invalidate flushes the listing cache so subsequent reads observe
// admin mutations
func (c *CatalogController) Invalidate() {
	c.cache.Flush()
}
