package controllers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kophyo6929/homietv/internal/models"
	"github.com/kophyo6929/homietv/internal/services/storage"
	"github.com/sirupsen/logrus"
)

// Upload carries a file chosen in an admin form
type Upload struct {
	Filename string
	Data     []byte
}

// LinkInput is one download link row from the video form
type LinkInput struct {
	Server        string
	Size          string
	Resolution    string
	ResolutionImg string
	URL           string
}

// VideoInput is the submitted video form. A zero ID means create.
type VideoInput struct {
	ID           uint64
	Title        string
	Year         string
	Genre        string
	PosterURL    string
	Director     string
	Synopsis     string
	Rating       string
	Duration     string
	IsSeries     bool
	Seasons      *int
	TelegramLink string
	Cast         string
	Links        []LinkInput
}

// AdInput is the submitted advertisement form. A zero ID means create.
type AdInput struct {
	ID           uint64
	Title        string
	Placement    models.Placement
	TargetURL    string
	MediaURL     string
	MediaType    models.MediaType
	IsActive     bool
	DisplayOrder int
}

// ContentController runs the admin content-management workflow: media
// upload strictly before any row write, then the row write, then for
// videos the transactional replacement of the download link set.
type ContentController struct {
	db      *models.Database
	store   *storage.Store
	catalog *CatalogController
	ads     *AdsController
	logger  *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewContentController creates a new content controller
func NewContentController(db *models.Database, store *storage.Store, catalog *CatalogController, ads *AdsController, logger *logrus.Logger) *ContentController {
	return &ContentController{
		db:      db,
		store:   store,
		catalog: catalog,
		ads:     ads,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockRecord serializes saves for the same record so a double submit
// cannot race two writes. Returns the unlock func.
func (c *ContentController) lockRecord(key string) func() {
	c.mu.Lock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// SaveVideo creates or updates a video. If a poster was chosen the
// upload runs first and any upload failure aborts the save with zero
// row mutations. The submitted link set, filtered to entries with a
// non-empty URL, replaces the stored set wholesale.
func (c *ContentController) SaveVideo(input VideoInput, poster *Upload) (*models.Video, error) {
	unlock := c.lockRecord(fmt.Sprintf("video:%d", input.ID))
	defer unlock()

	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	posterURL := input.PosterURL
	if poster != nil && len(poster.Data) > 0 {
		url, err := c.store.Upload(poster.Filename, poster.Data)
		if err != nil {
			return nil, fmt.Errorf("poster upload failed: %w", err)
		}
		posterURL = url
	}

	var video *models.Video
	if input.ID != 0 {
		existing, err := c.db.GetVideoByID(input.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load video %d: %w", input.ID, err)
		}
		if posterURL == "" {
			// No new file and no URL in the form: keep the stored poster
			posterURL = existing.PosterURL
		}
		video = existing
	} else {
		video = &models.Video{}
	}

	video.Title = strings.TrimSpace(input.Title)
	video.Year = strings.TrimSpace(input.Year)
	video.Genre = strings.TrimSpace(input.Genre)
	video.PosterURL = posterURL
	video.Director = strings.TrimSpace(input.Director)
	video.Synopsis = input.Synopsis
	video.Rating = strings.TrimSpace(input.Rating)
	video.Duration = strings.TrimSpace(input.Duration)
	video.IsSeries = input.IsSeries
	video.TelegramLink = strings.TrimSpace(input.TelegramLink)
	video.Cast = strings.TrimSpace(input.Cast)
	if input.IsSeries {
		video.Seasons = input.Seasons
	} else {
		video.Seasons = nil
	}

	if input.ID != 0 {
		if err := c.db.UpdateVideo(video); err != nil {
			return nil, fmt.Errorf("failed to update video: %w", err)
		}
	} else {
		if err := c.db.CreateVideo(video); err != nil {
			return nil, fmt.Errorf("failed to create video: %w", err)
		}
	}

	links := make([]*models.DownloadLink, 0, len(input.Links))
	for _, in := range input.Links {
		if strings.TrimSpace(in.URL) == "" {
			continue
		}
		links = append(links, &models.DownloadLink{
			Server:        strings.TrimSpace(in.Server),
			Size:          strings.TrimSpace(in.Size),
			Resolution:    strings.TrimSpace(in.Resolution),
			ResolutionImg: strings.TrimSpace(in.ResolutionImg),
			URL:           strings.TrimSpace(in.URL),
		})
	}
	if err := c.db.ReplaceLinks(video.ID, links); err != nil {
		return nil, fmt.Errorf("failed to replace download links: %w", err)
	}

	c.catalog.Invalidate()

	c.logger.WithFields(logrus.Fields{
		"video_id": video.ID,
		"title":    video.Title,
		"links":    len(links),
		"created":  input.ID == 0,
	}).Info("Video saved")

	return video, nil
}

// DeleteVideo removes a video and its dependent rows
func (c *ContentController) DeleteVideo(id uint64) error {
	unlock := c.lockRecord(fmt.Sprintf("video:%d", id))
	defer unlock()

	if err := c.db.DeleteVideo(id); err != nil {
		return fmt.Errorf("failed to delete video %d: %w", id, err)
	}

	c.catalog.Invalidate()

	c.logger.WithField("video_id", id).Info("Video deleted")
	return nil
}

// SaveAd creates or updates an advertisement, uploading new media first
// with the same abort-on-failure sequencing as videos
func (c *ContentController) SaveAd(input AdInput, media *Upload) (*models.Advertisement, error) {
	unlock := c.lockRecord(fmt.Sprintf("ad:%d", input.ID))
	defer unlock()

	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.MediaType != models.MediaTypeImage && input.MediaType != models.MediaTypeVideo {
		return nil, fmt.Errorf("unknown media type %q", input.MediaType)
	}

	mediaURL := input.MediaURL
	if media != nil && len(media.Data) > 0 {
		url, err := c.store.Upload(media.Filename, media.Data)
		if err != nil {
			return nil, fmt.Errorf("media upload failed: %w", err)
		}
		mediaURL = url
	}

	var ad *models.Advertisement
	if input.ID != 0 {
		existing, err := c.db.GetAdByID(input.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load ad %d: %w", input.ID, err)
		}
		if mediaURL == "" {
			mediaURL = existing.MediaURL
		}
		ad = existing
	} else {
		ad = &models.Advertisement{}
	}

	ad.Title = strings.TrimSpace(input.Title)
	ad.Placement = input.Placement
	ad.TargetURL = strings.TrimSpace(input.TargetURL)
	ad.MediaURL = mediaURL
	ad.MediaType = input.MediaType
	ad.IsActive = input.IsActive
	ad.DisplayOrder = input.DisplayOrder

	if input.ID != 0 {
		if err := c.db.UpdateAd(ad); err != nil {
			return nil, fmt.Errorf("failed to update ad: %w", err)
		}
	} else {
		if err := c.db.CreateAd(ad); err != nil {
			return nil, fmt.Errorf("failed to create ad: %w", err)
		}
	}

	c.ads.Invalidate()

	c.logger.WithFields(logrus.Fields{
		"ad_id":     ad.ID,
		"placement": ad.Placement,
		"created":   input.ID == 0,
	}).Info("Advertisement saved")

	return ad, nil
}

// DeleteAd removes an advertisement
func (c *ContentController) DeleteAd(id uint64) error {
	unlock := c.lockRecord(fmt.Sprintf("ad:%d", id))
	defer unlock()

	if err := c.db.DeleteAd(id); err != nil {
		return fmt.Errorf("failed to delete ad %d: %w", id, err)
	}

	c.ads.Invalidate()

	c.logger.WithField("ad_id", id).Info("Advertisement deleted")
	return nil
}
