package controllers

import (
	"fmt"
	"time"

	"github.com/kophyo6929/homietv/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// AdsController selects the advertisement to render for a placement slot
type AdsController struct {
	db     *models.Database
	cache  *gocache.Cache
	logger *logrus.Logger
}

// NewAdsController creates a new ads controller
func NewAdsController(db *models.Database, logger *logrus.Logger) *AdsController {
	return &AdsController{
		db:     db,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
		logger: logger,
	}
}

// ActiveAd returns the single active ad for a placement with the lowest
// display order, or nil when no active ad exists for the slot
func (c *AdsController) ActiveAd(placement models.Placement) (*models.Advertisement, error) {
	key := "ad:" + string(placement)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*models.Advertisement), nil
	}

	ads, err := c.db.GetActiveAdsByPlacement(placement)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ads for placement %s: %w", placement, err)
	}

	if len(ads) == 0 {
		return nil, nil
	}

	ad := ads[0]
	c.cache.Set(key, ad, gocache.DefaultExpiration)

	c.logger.WithFields(logrus.Fields{
		"placement":     placement,
		"ad_id":         ad.ID,
		"display_order": ad.DisplayOrder,
	}).Debug("Selected advertisement")

	return ad, nil
}

// Invalidate flushes the placement cache after an ad mutation
func (c *AdsController) Invalidate() {
	c.cache.Flush()
}
