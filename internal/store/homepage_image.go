package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desajambearum/jambearum/internal/model"
)

const homepageImageColumns = `id, section, title, description, image_url, alt_text, is_active, sort_order, created_at, updated_at`

// CreateHomepageImage inserts an image slot. ID, CreatedAt and UpdatedAt are
// populated on success.
func (s *Store) CreateHomepageImage(ctx context.Context, img *model.HomepageImage) error {
	if img.ID == "" {
		img.ID = newID()
	}
	t := now()
	img.CreatedAt = t
	img.UpdatedAt = t

	const q = `INSERT INTO homepage_images
		(id, section, title, description, image_url, alt_text, is_active, sort_order, created_at, updated_at)
		VALUES
		(:id, :section, :title, :description, :image_url, :alt_text, :is_active, :sort_order, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, img); err != nil {
		return fmt.Errorf("insert homepage image: %w", err)
	}
	return nil
}

// GetHomepageImage returns an image by ID.
func (s *Store) GetHomepageImage(ctx context.Context, id string) (*model.HomepageImage, error) {
	var img model.HomepageImage
	q := s.rebind(`SELECT ` + homepageImageColumns + ` FROM homepage_images WHERE id = ?`)
	if err := s.db.GetContext(ctx, &img, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get homepage image: %w", err)
	}
	return &img, nil
}

// ListHomepageImages returns images ordered by section, then sort order,
// then newest first. An empty section matches all sections.
func (s *Store) ListHomepageImages(ctx context.Context, section string, activeOnly bool) ([]model.HomepageImage, error) {
	q := `SELECT ` + homepageImageColumns + ` FROM homepage_images WHERE 1 = 1`
	var args []interface{}
	if section != "" {
		q += " AND section = ?"
		args = append(args, section)
	}
	if activeOnly {
		q += " AND is_active = ?"
		args = append(args, true)
	}
	q += " ORDER BY section ASC, sort_order ASC, created_at DESC, id DESC"

	images := []model.HomepageImage{}
	if err := s.db.SelectContext(ctx, &images, s.rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list homepage images: %w", err)
	}
	return images, nil
}

// UpdateHomepageImage overwrites every mutable column of an existing image.
func (s *Store) UpdateHomepageImage(ctx context.Context, img *model.HomepageImage) error {
	img.UpdatedAt = now()

	const q = `UPDATE homepage_images SET
		section = :section, title = :title, description = :description, image_url = :image_url,
		alt_text = :alt_text, is_active = :is_active, sort_order = :sort_order, updated_at = :updated_at
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, q, img)
	if err != nil {
		return fmt.Errorf("update homepage image: %w", err)
	}
	return exactlyOne(res, "update homepage image")
}

// DeleteHomepageImage removes an image by ID.
func (s *Store) DeleteHomepageImage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM homepage_images WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete homepage image: %w", err)
	}
	return exactlyOne(res, "delete homepage image")
}
