package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/service"
	"github.com/desajambearum/jambearum/internal/storage"
	"github.com/desajambearum/jambearum/internal/store"
)

const (
	testJWTSecret = "test-secret-for-handler-tests"
	testPassword  = "jambearum2024!"
)

// testEnv holds shared state for handler integration tests.
type testEnv struct {
	store   *store.Store
	authSvc *service.AuthService
	blobs   *storage.LocalStore
	router  chi.Router
}

// newTestEnv creates a fresh test environment with an in-memory store, a
// temp upload directory and a Chi router with every handler mounted (no
// session middleware, which the server tests cover).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(store.Config{}) // in-memory SQLite
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	blobs, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("storage.NewLocalStore: %v", err)
	}

	authSvc := service.NewAuthService(st, service.AuthConfig{
		Secret:     testJWTSecret,
		BcryptCost: bcrypt.MinCost,
	})

	adminH := NewAdminHandler(st, authSvc, nil)
	umkmH := NewUMKMHandler(st, nil)
	imageH := NewHomepageImageHandler(st, nil)
	settingsH := NewSettingsHandler(st, nil)
	uploadH := NewUploadHandler(blobs, nil)
	userH := NewUserHandler(st, nil)
	sysH := NewSystemHandler(st, "test", nil)

	r := chi.NewRouter()
	r.Get("/healthz", sysH.Health)
	r.Get("/readyz", sysH.Ready)
	r.Get("/openapi.json", sysH.OpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Get("/umkm", umkmH.ListPublic)
		r.Get("/umkm/{id}", umkmH.GetPublic)
		r.Get("/homepage-images", imageH.ListPublic)
		r.Get("/settings/public", settingsH.Public)
		r.Get("/users", userH.List)
		r.Post("/users", userH.Create)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminH.Login)
			r.Post("/logout", adminH.Logout)
			r.Get("/me", adminH.Me)
			r.Get("/stats", adminH.Stats)

			r.Get("/umkm", umkmH.List)
			r.Post("/umkm", umkmH.Create)
			r.Post("/umkm/bulk", umkmH.Bulk)
			r.Get("/umkm/{id}", umkmH.Get)
			r.Patch("/umkm/{id}", umkmH.Update)
			r.Delete("/umkm/{id}", umkmH.Delete)

			r.Get("/homepage-images", imageH.List)
			r.Post("/homepage-images", imageH.Create)
			r.Get("/homepage-images/{id}", imageH.Get)
			r.Patch("/homepage-images/{id}", imageH.Update)
			r.Delete("/homepage-images/{id}", imageH.Delete)

			r.Get("/settings/whatsapp", settingsH.GetWhatsApp)
			r.Post("/settings/whatsapp", settingsH.SetWhatsApp)

			r.Post("/upload", uploadH.Upload)
			r.Delete("/upload", uploadH.Delete)
		})
	})

	return &testEnv{
		store:   st,
		authSvc: authSvc,
		blobs:   blobs,
		router:  r,
	}
}

// seedAdmin creates an active admin with testPassword.
func (e *testEnv) seedAdmin(t *testing.T, username string, active bool) *model.Admin {
	t.Helper()
	hash, err := e.authSvc.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	admin := &model.Admin{
		Username:     username,
		Email:        username + "@jambearum.desa.id",
		Name:         "Test Admin",
		Role:         model.RoleAdmin,
		PasswordHash: hash,
		IsActive:     active,
	}
	if err := e.store.CreateAdmin(context.Background(), admin); err != nil {
		t.Fatalf("seedAdmin: %v", err)
	}
	return admin
}

// seedUMKM inserts an entry directly through the store.
func (e *testEnv) seedUMKM(t *testing.T, name, category, dusun string, active bool) *model.UMKM {
	t.Helper()
	u := &model.UMKM{
		Name:     name,
		Category: category,
		Owner:    "Pemilik " + name,
		Dusun:    dusun,
		Products: []string{"Produk A"},
		IsActive: active,
	}
	if err := e.store.CreateUMKM(context.Background(), u); err != nil {
		t.Fatalf("seedUMKM: %v", err)
	}
	return u
}

// do executes an HTTP request against the test router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// login posts credentials and returns the session cookie.
func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rr := e.do(t, "POST", "/api/admin/login", toJSON(t, map[string]string{
		"username": username,
		"password": password,
	}))
	assertStatus(t, rr, http.StatusOK)
	c := sessionCookie(rr)
	if c == nil {
		t.Fatal("login did not set the session cookie")
	}
	return c
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == service.SessionCookieName {
			return c
		}
	}
	return nil
}

// envelope mirrors model.Response with raw payloads.
type envelope struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	User     json.RawMessage `json:"user"`
	Count    *int            `json:"count"`
	Affected *int64          `json:"affected"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	decodeJSON(t, rr, &env)
	return env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v; data = %s", err, env.Data)
	}
}

func toJSON(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("toJSON: %v", err)
	}
	return buf
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decodeJSON: %v; body = %s", err, rr.Body.String())
	}
}

func assertMessage(t *testing.T, env envelope, want string) {
	t.Helper()
	if env.Message != want {
		t.Errorf("message = %q, want %q", env.Message, want)
	}
}

func strPtr(s string) *string { return &s }
