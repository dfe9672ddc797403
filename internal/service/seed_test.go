package service

import (
	"context"
	"testing"

	"github.com/desajambearum/jambearum/internal/model"
)

func TestSeedIsIdempotent(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()

	res, err := Seed(ctx, st, auth)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !res.AdminCreated || len(res.UMKMCreated) != 3 {
		t.Errorf("first seed = %+v", res)
	}

	user, err := auth.ValidateCredentials(ctx, DefaultAdminUsername, DefaultAdminPassword)
	if err != nil {
		t.Fatalf("seeded admin cannot log in: %v", err)
	}
	if !user.IsAdmin() {
		t.Error("seeded admin should have the admin role")
	}

	res, err = Seed(ctx, st, auth)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if res.AdminCreated || len(res.UMKMCreated) != 0 {
		t.Errorf("second seed created records: %+v", res)
	}

	all, err := st.ListUMKM(ctx, model.UMKMFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("ListUMKM: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d sample umkm, want 3", len(all))
	}
	for _, u := range all {
		if len(u.Products) != 4 {
			t.Errorf("%s has %d products, want 4", u.Name, len(u.Products))
		}
	}
}
