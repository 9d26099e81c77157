package controllers

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/kophyo6929/homietv/internal/models"
	"github.com/kophyo6929/homietv/internal/services/storage"
	"github.com/sirupsen/logrus"
)

// uploadGracePeriod protects files uploaded by an in-flight save whose
// row write has not landed yet
const uploadGracePeriod = 1 * time.Hour

// CleanupController removes expired sessions and uploaded files no row
// references anymore
type CleanupController struct {
	db     *models.Database
	store  *storage.Store
	logger *logrus.Logger
}

// NewCleanupController creates a new cleanup controller
func NewCleanupController(db *models.Database, store *storage.Store, logger *logrus.Logger) *CleanupController {
	return &CleanupController{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// CleanupSessions removes all expired sessions
func (c *CleanupController) CleanupSessions() error {
	deleted, err := c.db.DeleteExpiredSessions(time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	if deleted > 0 {
		c.logger.WithField("count", deleted).Info("Expired sessions removed")
	}
	return nil
}

// CleanupUploads removes stored files referenced by no video poster, ad
// media or download link badge. Recent files are skipped so an upload
// whose save is still in flight survives.
func (c *CleanupController) CleanupUploads() error {
	referenced, err := c.referencedUploads()
	if err != nil {
		return err
	}

	files, err := c.store.ListFiles()
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}

	cutoff := time.Now().Add(-uploadGracePeriod)
	removed := 0
	for _, file := range files {
		if referenced[file.Name] || file.ModTime.After(cutoff) {
			continue
		}
		if err := c.store.Remove(file.Name); err != nil {
			c.logger.WithError(err).WithField("name", file.Name).Error("Failed to remove orphaned upload")
			continue
		}
		removed++
	}

	if removed > 0 {
		c.logger.WithField("count", removed).Info("Orphaned uploads removed")
	}
	return nil
}

// referencedUploads collects the stored file names reachable from any row
func (c *CleanupController) referencedUploads() (map[string]bool, error) {
	referenced := make(map[string]bool)

	add := func(url string) {
		name := uploadName(url)
		if name != "" {
			referenced[name] = true
		}
	}

	videos, err := c.db.GetAllVideos()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch videos: %w", err)
	}
	for _, video := range videos {
		add(video.PosterURL)

		links, err := c.db.GetLinksByVideoID(video.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch links for video %d: %w", video.ID, err)
		}
		for _, link := range links {
			add(link.ResolutionImg)
		}

		cast, err := c.db.GetCastByVideoID(video.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch cast for video %d: %w", video.ID, err)
		}
		for _, member := range cast {
			add(member.ImageURL)
		}
	}

	ads, err := c.db.GetAllAds()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ads: %w", err)
	}
	for _, ad := range ads {
		add(ad.MediaURL)
	}

	return referenced, nil
}

// uploadName extracts the stored file name from an upload URL.
// External URLs return the empty string.
func uploadName(url string) string {
	idx := strings.Index(url, "/uploads/")
	if idx < 0 {
		return ""
	}
	return path.Base(url[idx+len("/uploads/"):])
}
