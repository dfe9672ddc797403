package model

import "time"

// User is a registered site visitor.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      *string   `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Stats summarises the directory for the admin dashboard.
type Stats struct {
	TotalUMKM   int    `json:"totalUMKM"`
	ActiveUMKM  int    `json:"activeUMKM"`
	TotalUsers  int    `json:"totalUsers"`
	TotalAdmins int    `json:"totalAdmins"`
	LastUpdated string `json:"lastUpdated"`
}
