package model

import "time"

// Admin represents an administrative account that can manage the village
// directory through the back-office. Passwords are stored as bcrypt hashes.
// IsActive=false disables login permanently without deleting the record.
type Admin struct {
	ID           string     `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	Role         Role       `json:"role" db:"role"`
	PasswordHash string     `json:"-" db:"password_hash"` // bcrypt hash, never expose
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// AdminUser is the identity carried inside a session token. LoginTime is the
// issuance time in epoch milliseconds.
type AdminUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	LoginTime int64  `json:"loginTime"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (u *AdminUser) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}
