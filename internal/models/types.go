package models

// Placement names the slot an advertisement is assigned to.
// At most one ad renders per slot at a time.
type Placement string

const (
	PlacementHeader          Placement = "header"
	PlacementHero            Placement = "hero"
	PlacementSidebar         Placement = "sidebar"
	PlacementVideoTop        Placement = "video-top"
	PlacementVideoBottom     Placement = "video-bottom"
	PlacementDownloadSection Placement = "download-section"
	PlacementFooter          Placement = "footer"
)

// MediaType discriminates how an advertisement's media URL is rendered
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Role represents a user role
type Role string

const (
	RoleAdmin Role = "admin"
)
