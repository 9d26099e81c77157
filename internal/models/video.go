package models

import (
	"strings"
	"time"
)

// Video represents a movie or TV series in the catalog
type Video struct {
	ID    uint64 `boltholdKey:"ID"`
	Title string
	Year  string
	Genre string // comma-joined, e.g. "Action, Sci-Fi"

	PosterURL string
	Director  string
	Synopsis  string
	Rating    string // display value, e.g. "8.5"
	Duration  string // display value, e.g. "2h 30m"

	IsSeries bool `boltholdIndex:"IsSeries"`
	Seasons  *int // nil for movies

	TelegramLink string
	Cast         string // comma-joined actor names

	// Metadata (CreatedAt drives the default listing order)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Genres splits the comma-joined genre string into trimmed entries
func (v *Video) Genres() []string {
	parts := strings.Split(v.Genre, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// CastNames splits the comma-joined cast string into trimmed entries
func (v *Video) CastNames() []string {
	parts := strings.Split(v.Cast, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := strings.TrimSpace(p); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// DownloadLink represents one download source for a video.
// The link set for a video is replaced wholesale on every save.
type DownloadLink struct {
	ID      uint64 `boltholdKey:"ID"`
	VideoID uint64 `boltholdIndex:"VideoID"`

	Server        string // server label shown in the table
	Size          string // size label, e.g. "1.4 GB"
	Resolution    string // resolution label, e.g. "1080p"
	ResolutionImg string // optional badge image URL
	URL           string

	Position  int // insertion order within the video's link set
	CreatedAt time.Time
}

// CastMember represents a credited actor for a video
type CastMember struct {
	ID      uint64 `boltholdKey:"ID"`
	VideoID uint64 `boltholdIndex:"VideoID"`

	Name      string
	Character string
	ImageURL  string
}
