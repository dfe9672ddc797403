package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/desajambearum/jambearum/internal/model"
)

// umkmRow maps 1:1 to the umkm table. Products are stored as a JSON array
// in products_json so every driver can hold them in a plain text column.
type umkmRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Description  *string   `db:"description"`
	Category     string    `db:"category"`
	Owner        string    `db:"owner"`
	Phone        *string   `db:"phone"`
	Address      *string   `db:"address"`
	Dusun        string    `db:"dusun"`
	ProductsJSON string    `db:"products_json"`
	Image        *string   `db:"image"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const umkmColumns = `id, name, description, category, owner, phone, address, dusun, products_json, image, is_active, created_at, updated_at`

func umkmRowFromModel(u *model.UMKM) (umkmRow, error) {
	products := u.Products
	if products == nil {
		products = []string{}
	}
	b, err := json.Marshal(products)
	if err != nil {
		return umkmRow{}, fmt.Errorf("marshal products: %w", err)
	}
	return umkmRow{
		ID:           u.ID,
		Name:         u.Name,
		Description:  u.Description,
		Category:     u.Category,
		Owner:        u.Owner,
		Phone:        u.Phone,
		Address:      u.Address,
		Dusun:        u.Dusun,
		ProductsJSON: string(b),
		Image:        u.Image,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

func (r umkmRow) toModel() (model.UMKM, error) {
	products := []string{}
	if r.ProductsJSON != "" {
		if err := json.Unmarshal([]byte(r.ProductsJSON), &products); err != nil {
			return model.UMKM{}, fmt.Errorf("unmarshal products for umkm %s: %w", r.ID, err)
		}
	}
	return model.UMKM{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Owner:       r.Owner,
		Phone:       r.Phone,
		Address:     r.Address,
		Dusun:       r.Dusun,
		Products:    products,
		Image:       r.Image,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// CreateUMKM inserts a directory entry. ID, CreatedAt and UpdatedAt are
// populated on success.
func (s *Store) CreateUMKM(ctx context.Context, u *model.UMKM) error {
	if u.ID == "" {
		u.ID = newID()
	}
	t := now()
	u.CreatedAt = t
	u.UpdatedAt = t
	if u.Products == nil {
		u.Products = []string{}
	}

	row, err := umkmRowFromModel(u)
	if err != nil {
		return err
	}

	const q = `INSERT INTO umkm
		(id, name, description, category, owner, phone, address, dusun, products_json, image, is_active, created_at, updated_at)
		VALUES
		(:id, :name, :description, :category, :owner, :phone, :address, :dusun, :products_json, :image, :is_active, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("insert umkm: %w", err)
	}
	return nil
}

// GetUMKM returns an entry by ID regardless of status.
func (s *Store) GetUMKM(ctx context.Context, id string) (*model.UMKM, error) {
	return s.getUMKM(ctx, `SELECT `+umkmColumns+` FROM umkm WHERE id = ?`, id)
}

// GetActiveUMKM returns an entry only if it is publicly visible.
func (s *Store) GetActiveUMKM(ctx context.Context, id string) (*model.UMKM, error) {
	return s.getUMKM(ctx, `SELECT `+umkmColumns+` FROM umkm WHERE id = ? AND is_active = ?`, id, true)
}

func (s *Store) getUMKM(ctx context.Context, q string, args ...interface{}) (*model.UMKM, error) {
	var row umkmRow
	if err := s.db.GetContext(ctx, &row, s.rebind(q), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get umkm: %w", err)
	}
	u, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUMKM returns entries matching f, newest first.
func (s *Store) ListUMKM(ctx context.Context, f model.UMKMFilter) ([]model.UMKM, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.ActiveOnly {
		where = append(where, "is_active = ?")
		args = append(args, true)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Dusun != "" {
		where = append(where, "dusun = ?")
		args = append(args, f.Dusun)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ? OR LOWER(owner) LIKE ?)")
		args = append(args, like, like, like)
	}

	q := `SELECT ` + umkmColumns + ` FROM umkm`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"

	var rows []umkmRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list umkm: %w", err)
	}

	out := make([]model.UMKM, 0, len(rows))
	for _, r := range rows {
		u, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// UpdateUMKM overwrites every mutable column of an existing entry and bumps
// UpdatedAt. Merging partial input is the caller's job.
func (s *Store) UpdateUMKM(ctx context.Context, u *model.UMKM) error {
	u.UpdatedAt = now()
	row, err := umkmRowFromModel(u)
	if err != nil {
		return err
	}

	const q = `UPDATE umkm SET
		name = :name, description = :description, category = :category, owner = :owner,
		phone = :phone, address = :address, dusun = :dusun, products_json = :products_json,
		image = :image, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return fmt.Errorf("update umkm: %w", err)
	}
	return exactlyOne(res, "update umkm")
}

// DeleteUMKM removes an entry by ID.
func (s *Store) DeleteUMKM(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM umkm WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete umkm: %w", err)
	}
	return exactlyOne(res, "delete umkm")
}

// SetUMKMActive flips is_active on every listed entry and reports how many
// rows matched. Unknown IDs are ignored.
func (s *Store) SetUMKMActive(ctx context.Context, ids []string, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("UPDATE umkm SET is_active = ?, updated_at = ? WHERE id IN (?)", active, now(), ids)
	if err != nil {
		return 0, fmt.Errorf("build bulk update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.rebind(q), args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update umkm: %w", err)
	}
	return res.RowsAffected()
}

// DeleteUMKMs removes every listed entry and reports how many were deleted.
func (s *Store) DeleteUMKMs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("DELETE FROM umkm WHERE id IN (?)", ids)
	if err != nil {
		return 0, fmt.Errorf("build bulk delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.rebind(q), args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete umkm: %w", err)
	}
	return res.RowsAffected()
}

// CountUMKM returns the total number of entries.
func (s *Store) CountUMKM(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM umkm"); err != nil {
		return 0, fmt.Errorf("count umkm: %w", err)
	}
	return n, nil
}

// CountActiveUMKM returns the number of publicly visible entries.
func (s *Store) CountActiveUMKM(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.rebind("SELECT COUNT(*) FROM umkm WHERE is_active = ?"), true); err != nil {
		return 0, fmt.Errorf("count active umkm: %w", err)
	}
	return n, nil
}
