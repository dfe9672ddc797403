package model

import "time"

// UMKM is one directory entry for a local micro, small or medium enterprise.
type UMKM struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Category    string    `json:"category"`
	Owner       string    `json:"owner"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	Dusun       string    `json:"dusun"`
	Products    []string  `json:"products"`
	Image       *string   `json:"image"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UMKMFilter narrows a directory listing. Zero values match everything.
type UMKMFilter struct {
	ActiveOnly bool
	Category   string
	Dusun      string
	Search     string // case-insensitive match on name, description and owner
}

// BulkAction is an operation applied to many UMKM records at once.
type BulkAction string

const (
	BulkActivate   BulkAction = "activate"
	BulkDeactivate BulkAction = "deactivate"
	BulkDelete     BulkAction = "delete"
)

// Valid reports whether a is a supported bulk action.
func (a BulkAction) Valid() bool {
	switch a {
	case BulkActivate, BulkDeactivate, BulkDelete:
		return true
	}
	return false
}
