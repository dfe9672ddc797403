package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/store"
)

// Default credentials created by Seed.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "jambearum2024!"
	DefaultAdminEmail    = "admin@jambearum.desa.id"
	DefaultAdminName     = "Administrator"
)

// SeedResult reports what Seed created.
type SeedResult struct {
	AdminCreated bool
	UMKMCreated  []string
}

func ptr(s string) *string { return &s }

var sampleUMKM = []model.UMKM{
	{
		Name:        "Hasil Tani Sumber Kokap",
		Description: ptr("Menyediakan hasil pertanian segar dari lahan subur kaki Gunung Raung"),
		Category:    "Pertanian",
		Owner:       "Pak Suryanto",
		Phone:       ptr("081234567890"),
		Address:     ptr("Jl. Raya Sumber Kokap No. 15"),
		Dusun:       "Sumber Kokap Barat",
		Products:    []string{"Padi", "Jagung", "Cabai", "Tomat"},
	},
	{
		Name:        "Kerajinan Bambu Paceh",
		Description: ptr("Kerajinan anyaman bambu berkualitas tinggi dengan motif tradisional"),
		Category:    "Kerajinan",
		Owner:       "Bu Siti Aminah",
		Phone:       ptr("082345678901"),
		Address:     ptr("Dusun Paceh RT 02/03"),
		Dusun:       "Paceh",
		Products:    []string{"Anyaman Bambu", "Tikar", "Tas Belanja", "Tempat Nasi"},
	},
	{
		Name:        "Madu Hutan Biarum",
		Description: ptr("Madu asli hutan Gunung Raung dengan kualitas premium"),
		Category:    "Produk Olahan",
		Owner:       "Pak Wahyudi",
		Phone:       ptr("083456789012"),
		Address:     ptr("Dusun Biarum RT 01/02"),
		Dusun:       "Biarum",
		Products:    []string{"Madu Murni", "Madu Kelengkeng", "Propolis", "Royal Jelly"},
	},
}

// Seed creates the default admin account if it is missing and adds the
// sample UMKM entries that are not already present by name. Running it
// twice changes nothing.
func Seed(ctx context.Context, st *store.Store, auth *AuthService) (*SeedResult, error) {
	res := &SeedResult{}

	if _, err := st.GetAdminByUsername(ctx, DefaultAdminUsername); errors.Is(err, store.ErrNotFound) {
		hash, err := auth.HashPassword(DefaultAdminPassword)
		if err != nil {
			return nil, err
		}
		admin := &model.Admin{
			Username:     DefaultAdminUsername,
			Email:        DefaultAdminEmail,
			Name:         DefaultAdminName,
			Role:         model.RoleAdmin,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := st.CreateAdmin(ctx, admin); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		res.AdminCreated = true
	} else if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	existing, err := st.ListUMKM(ctx, model.UMKMFilter{})
	if err != nil {
		return nil, fmt.Errorf("seed umkm: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, u := range existing {
		names[u.Name] = true
	}

	for _, sample := range sampleUMKM {
		if names[sample.Name] {
			continue
		}
		u := sample
		u.Products = append([]string(nil), sample.Products...)
		u.IsActive = true
		if err := st.CreateUMKM(ctx, &u); err != nil {
			return nil, fmt.Errorf("seed umkm %s: %w", u.Name, err)
		}
		res.UMKMCreated = append(res.UMKMCreated, u.Name)
	}
	return res, nil
}
