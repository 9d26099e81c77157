package models

import "time"

// Advertisement represents an ad creative assigned to a placement slot
type Advertisement struct {
	ID    uint64 `boltholdKey:"ID"`
	Title string

	Placement Placement `boltholdIndex:"Placement"`
	TargetURL string

	MediaURL  string
	MediaType MediaType // "image" or "video"

	IsActive     bool `boltholdIndex:"IsActive"`
	DisplayOrder int  // lowest active wins for a placement

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsVideoMedia reports whether the creative renders as a video element
func (a *Advertisement) IsVideoMedia() bool {
	return a.MediaType == MediaTypeVideo
}
