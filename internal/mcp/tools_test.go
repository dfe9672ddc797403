package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/store"
)

func newTestServer(t *testing.T) (*MCPServer, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Config{}) // in-memory SQLite
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewMCPServer(st, "test", slog.New(slog.NewTextHandler(io.Discard, nil))), st
}

func seedUMKM(t *testing.T, st *store.Store, name, category string, active bool) *model.UMKM {
	t.Helper()
	u := &model.UMKM{
		Name:     name,
		Category: category,
		Owner:    "Pemilik " + name,
		Dusun:    "Krajan",
		Products: []string{"Produk"},
		IsActive: active,
	}
	if err := st.CreateUMKM(context.Background(), u); err != nil {
		t.Fatalf("CreateUMKM: %v", err)
	}
	return u
}

func TestNewMCPServer_RegistersTools(t *testing.T) {
	s, _ := newTestServer(t)

	tools := s.Server().ListTools()
	for _, name := range []string{
		"jambearum_list_umkm",
		"jambearum_get_umkm",
		"jambearum_list_homepage_images",
		"jambearum_contact",
	} {
		tool, ok := tools[name]
		if !ok {
			t.Errorf("tool %s not registered", name)
			continue
		}
		if hint := tool.Tool.Annotations.ReadOnlyHint; hint == nil || !*hint {
			t.Errorf("tool %s should be read-only", name)
		}
	}
}

func TestListUMKM(t *testing.T) {
	s, st := newTestServer(t)
	seedUMKM(t, st, "Kopi Raung", "Produk Olahan", true)
	seedUMKM(t, st, "Batik Tulis", "Kerajinan", true)
	seedUMKM(t, st, "Tutup", "Kerajinan", false)

	tests := []struct {
		name  string
		args  map[string]interface{}
		count int
		total int
	}{
		{"all active", nil, 2, 2},
		{"category", map[string]interface{}{"category": "Kerajinan"}, 1, 1},
		{"search", map[string]interface{}{"q": "raung"}, 1, 1},
		{"limited", map[string]interface{}{"limit": 1}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleListUMKM(context.Background(), callRequest("jambearum_list_umkm", tt.args))
			if err != nil {
				t.Fatalf("handleListUMKM: %v", err)
			}
			if res.IsError {
				t.Fatalf("tool error: %s", resultText(t, res))
			}

			var out struct {
				Businesses []umkmSummary `json:"businesses"`
				Count      int           `json:"count"`
				Total      int           `json:"total"`
			}
			if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Count != tt.count || out.Total != tt.total {
				t.Errorf("count/total = %d/%d, want %d/%d", out.Count, out.Total, tt.count, tt.total)
			}
			for _, b := range out.Businesses {
				if b.Name == "Tutup" {
					t.Error("inactive business exposed")
				}
			}
		})
	}
}

func TestGetUMKM(t *testing.T) {
	s, st := newTestServer(t)
	active := seedUMKM(t, st, "Kopi Raung", "Produk Olahan", true)
	hidden := seedUMKM(t, st, "Tutup", "Kerajinan", false)

	res, err := s.handleGetUMKM(context.Background(), callRequest("jambearum_get_umkm", map[string]interface{}{"id": active.ID}))
	if err != nil {
		t.Fatalf("handleGetUMKM: %v", err)
	}
	var got model.UMKM
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Kopi Raung" {
		t.Errorf("name = %q", got.Name)
	}

	for _, args := range []map[string]interface{}{{"id": hidden.ID}, {"id": "missing"}, {}} {
		res, err := s.handleGetUMKM(context.Background(), callRequest("jambearum_get_umkm", args))
		if err != nil {
			t.Fatalf("handleGetUMKM: %v", err)
		}
		if !res.IsError {
			t.Errorf("args %v: expected tool error", args)
		}
	}
}

func TestListHomepageImages(t *testing.T) {
	s, st := newTestServer(t)
	ctx := context.Background()
	for _, img := range []*model.HomepageImage{
		{Section: "hero", ImageURL: "/uploads/a.jpg", AltText: "a", IsActive: true},
		{Section: "gallery", ImageURL: "/uploads/b.jpg", AltText: "b", IsActive: true},
		{Section: "hero", ImageURL: "/uploads/c.jpg", AltText: "c", IsActive: false},
	} {
		if err := st.CreateHomepageImage(ctx, img); err != nil {
			t.Fatalf("CreateHomepageImage: %v", err)
		}
	}

	res, err := s.handleListHomepageImages(ctx, callRequest("jambearum_list_homepage_images", map[string]interface{}{"section": "hero"}))
	if err != nil {
		t.Fatalf("handleListHomepageImages: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, `"count": 1`) {
		t.Errorf("expected one active hero image, got %s", text)
	}
	if strings.Contains(text, "isActive") {
		t.Error("admin-only fields exposed")
	}
}

func TestContact(t *testing.T) {
	s, st := newTestServer(t)
	ctx := context.Background()

	read := func() map[string]string {
		t.Helper()
		res, err := s.handleContact(ctx, callRequest("jambearum_contact", nil))
		if err != nil {
			t.Fatalf("handleContact: %v", err)
		}
		var out map[string]string
		if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	if got := read(); got["whatsapp"] != model.DefaultWhatsApp {
		t.Errorf("default whatsapp = %q", got["whatsapp"])
	}

	if err := st.SetSetting(ctx, model.SettingAdminWhatsApp, "6285200001111"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	got := read()
	if got["whatsapp"] != "6285200001111" || got["link"] != "https://wa.me/6285200001111" {
		t.Errorf("contact = %v", got)
	}
}

func TestUMKMResources(t *testing.T) {
	s, st := newTestServer(t)
	active := seedUMKM(t, st, "Kopi Raung", "Produk Olahan", true)
	seedUMKM(t, st, "Tutup", "Kerajinan", false)
	ctx := context.Background()

	req := mcp.ReadResourceRequest{}
	req.Params.URI = umkmURI
	contents, err := s.handleUMKMResource(ctx, req)
	if err != nil {
		t.Fatalf("handleUMKMResource: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if !strings.Contains(text, "Kopi Raung") || strings.Contains(text, "Tutup") {
		t.Errorf("resource = %s", text)
	}

	req.Params.URI = umkmURI + "/" + active.ID
	contents, err = s.handleUMKMDetailResource(ctx, req)
	if err != nil {
		t.Fatalf("handleUMKMDetailResource: %v", err)
	}
	if uri := contents[0].(mcp.TextResourceContents).URI; uri != req.Params.URI {
		t.Errorf("URI = %q", uri)
	}

	for _, uri := range []string{umkmURI + "/", umkmURI + "/missing", "other://x"} {
		req.Params.URI = uri
		if _, err := s.handleUMKMDetailResource(ctx, req); err == nil {
			t.Errorf("%s: expected error", uri)
		}
	}
}
