package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desajambearum/jambearum/internal/model"
)

const adminColumns = `id, username, email, name, role, password_hash, is_active, last_login, created_at, updated_at`

// CreateAdmin inserts a new admin account. ID, CreatedAt and UpdatedAt are
// populated on success. A duplicate username yields ErrConflict.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	if admin.ID == "" {
		admin.ID = newID()
	}
	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}
	t := now()
	admin.CreatedAt = t
	admin.UpdatedAt = t

	const q = `INSERT INTO admins
		(id, username, email, name, role, password_hash, is_active, last_login, created_at, updated_at)
		VALUES
		(:id, :username, :email, :name, :role, :password_hash, :is_active, :last_login, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, admin); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetAdminByUsername returns an admin by username regardless of status.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	q := s.rebind(`SELECT ` + adminColumns + ` FROM admins WHERE username = ?`)
	if err := s.db.GetContext(ctx, &admin, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return &admin, nil
}

// GetActiveAdminByUsername returns an admin only if the account is active.
// Inactive and missing accounts are indistinguishable to the caller.
func (s *Store) GetActiveAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	q := s.rebind(`SELECT ` + adminColumns + ` FROM admins WHERE username = ? AND is_active = ?`)
	if err := s.db.GetContext(ctx, &admin, q, username, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get active admin: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all admin accounts ordered by username.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, `SELECT `+adminColumns+` FROM admins ORDER BY username`); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// HasAnyAdmin reports whether at least one admin account exists. Seeding
// uses it to stay idempotent.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}

// CountActiveAdmins returns the number of admins that can log in.
func (s *Store) CountActiveAdmins(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, s.rebind("SELECT COUNT(*) FROM admins WHERE is_active = ?"), true); err != nil {
		return 0, fmt.Errorf("count active admins: %w", err)
	}
	return count, nil
}

// UpdateAdminLastLogin stamps last_login with the current time.
func (s *Store) UpdateAdminLastLogin(ctx context.Context, id string) error {
	t := now()
	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE admins SET last_login = ?, updated_at = ? WHERE id = ?"), t, t, id)
	if err != nil {
		return fmt.Errorf("update admin last login: %w", err)
	}
	return exactlyOne(res, "update admin last login")
}

// SetAdminActive enables or disables an admin by username.
func (s *Store) SetAdminActive(ctx context.Context, username string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE admins SET is_active = ?, updated_at = ? WHERE username = ?"), active, now(), username)
	if err != nil {
		return fmt.Errorf("set admin active: %w", err)
	}
	return exactlyOne(res, "set admin active")
}

// UpdateAdminPassword replaces the stored bcrypt hash for username.
func (s *Store) UpdateAdminPassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE admins SET password_hash = ?, updated_at = ? WHERE username = ?"), passwordHash, now(), username)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return exactlyOne(res, "update admin password")
}
