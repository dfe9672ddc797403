package store

import (
	"context"
	"fmt"

	"github.com/desajambearum/jambearum/internal/model"
)

// CreateUser registers a visitor. A duplicate email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	t := now()
	u.CreatedAt = t
	u.UpdatedAt = t

	const q = `INSERT INTO users (id, email, name, created_at, updated_at)
		VALUES (:id, :email, :name, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, u); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// ListUsers returns every registered visitor, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.SelectContext(ctx, &users,
		"SELECT id, email, name, created_at, updated_at FROM users ORDER BY created_at DESC, id DESC"); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of registered visitors.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Stats gathers the dashboard counters.
func (s *Store) Stats(ctx context.Context) (*model.Stats, error) {
	var (
		st  model.Stats
		err error
	)
	if st.TotalUMKM, err = s.CountUMKM(ctx); err != nil {
		return nil, err
	}
	if st.ActiveUMKM, err = s.CountActiveUMKM(ctx); err != nil {
		return nil, err
	}
	if st.TotalUsers, err = s.CountUsers(ctx); err != nil {
		return nil, err
	}
	if st.TotalAdmins, err = s.CountActiveAdmins(ctx); err != nil {
		return nil, err
	}
	st.LastUpdated = now().Format("2006-01-02T15:04:05.000Z07:00")
	return &st, nil
}
