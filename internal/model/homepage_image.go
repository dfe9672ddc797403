package model

import "time"

// HomepageImage is an image slot on the public homepage, grouped by section
// (hero, gallery, wisata, ...) and ordered by SortOrder within a section.
type HomepageImage struct {
	ID          string    `json:"id" db:"id"`
	Section     string    `json:"section" db:"section"`
	Title       *string   `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	AltText     string    `json:"altText" db:"alt_text"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	SortOrder   int       `json:"sortOrder" db:"sort_order"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
