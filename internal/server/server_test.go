package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/service"
	"github.com/desajambearum/jambearum/internal/storage"
	"github.com/desajambearum/jambearum/internal/store"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

const (
	testJWTSecret = "test-secret-for-jwt-integration-tests"
	testPassword  = service.DefaultAdminPassword
)

// testEnv holds all the shared state for integration tests.
type testEnv struct {
	server  *Server
	store   *store.Store
	authSvc *service.AuthService
	uploads *storage.LocalStore
}

// newTestEnv creates a fresh test environment with an in-memory store, the
// seeded default admin, and a fully wired Server. mutate may adjust the
// config before the router is built.
func newTestEnv(t *testing.T, mutate ...func(*Config)) *testEnv {
	t.Helper()

	st, err := store.Open(store.Config{}) // in-memory SQLite
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	uploads, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("storage.NewLocalStore: %v", err)
	}

	authSvc := service.NewAuthService(st, service.AuthConfig{
		Secret:     testJWTSecret,
		BcryptCost: bcrypt.MinCost,
	})
	if _, err := service.Seed(context.Background(), st, authSvc); err != nil {
		t.Fatalf("service.Seed: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Version = "test"
	for _, m := range mutate {
		m(&cfg)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		server:  New(cfg, st, authSvc, uploads, logger),
		store:   st,
		authSvc: authSvc,
		uploads: uploads,
	}
}

// do executes a request against the full router.
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
	e.server.ServeHTTP(rr, req)
	return rr
}

// login posts the default credentials and returns the session cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rr := e.do(t, "POST", "/api/admin/login", jsonBody(t, map[string]string{
		"username": service.DefaultAdminUsername,
		"password": testPassword,
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

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("jsonBody: %v", err)
	}
	return buf
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func assertRedirect(t *testing.T, rr *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rr.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decodeJSON: %v; body = %s", err, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Probes
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/healthz", nil)
	assertStatus(t, rr, http.StatusOK)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set")
	}
}

func TestReadyz(t *testing.T) {
	env := newTestEnv(t)
	assertStatus(t, env.do(t, "GET", "/readyz", nil), http.StatusOK)

	env.store.Close()
	assertStatus(t, env.do(t, "GET", "/readyz", nil), http.StatusServiceUnavailable)
}

// ---------------------------------------------------------------------------
// Session lifecycle
// ---------------------------------------------------------------------------

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	cookie := env.login(t)

	rr := env.do(t, "GET", "/api/admin/me", nil, cookie)
	assertStatus(t, rr, http.StatusOK)
	var me model.Response
	decodeJSON(t, rr, &me)
	user, _ := me.User.(map[string]interface{})
	if user["username"] != "admin" || user["role"] != "admin" {
		t.Errorf("me user = %v", me.User)
	}

	assertStatus(t, env.do(t, "GET", "/api/admin/stats", nil, cookie), http.StatusOK)

	rr = env.do(t, "POST", "/api/admin/logout", nil, cookie)
	assertStatus(t, rr, http.StatusOK)
	cleared := sessionCookie(rr)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("logout should expire the cookie, got %+v", cleared)
	}

	// The browser drops the cookie; the next request carries none.
	assertStatus(t, env.do(t, "GET", "/api/admin/me", nil), http.StatusUnauthorized)
}

func TestLogout_RevokesWithDenylist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := newTestEnv(t)
	env.authSvc.WithDenylist(service.NewRedisDenylist(client))

	cookie := env.login(t)
	assertStatus(t, env.do(t, "GET", "/api/admin/me", nil, cookie), http.StatusOK)
	assertStatus(t, env.do(t, "POST", "/api/admin/logout", nil, cookie), http.StatusOK)

	// A client replaying the old cookie is now refused.
	assertStatus(t, env.do(t, "GET", "/api/admin/me", nil, cookie), http.StatusUnauthorized)
	assertStatus(t, env.do(t, "GET", "/api/admin/stats", nil, cookie), http.StatusUnauthorized)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/admin/login", jsonBody(t, map[string]string{
		"username": "admin",
		"password": "wrong",
	}))
	assertStatus(t, rr, http.StatusUnauthorized)
	if sessionCookie(rr) != nil {
		t.Error("failed login must not set a cookie")
	}

	var resp model.Response
	decodeJSON(t, rr, &resp)
	if resp.Success || resp.Message != "Username atau password salah" {
		t.Errorf("response = %+v", resp)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.LoginRateLimit = 2 })

	body := func() io.Reader { return strings.NewReader(`{"username":"admin","password":"wrong"}`) }
	assertStatus(t, env.do(t, "POST", "/api/admin/login", body()), http.StatusUnauthorized)
	assertStatus(t, env.do(t, "POST", "/api/admin/login", body()), http.StatusUnauthorized)
	assertStatus(t, env.do(t, "POST", "/api/admin/login", body()), http.StatusTooManyRequests)

	// Other endpoints are not limited.
	assertStatus(t, env.do(t, "GET", "/api/umkm", nil), http.StatusOK)
}

// ---------------------------------------------------------------------------
// Admin API guard
// ---------------------------------------------------------------------------

func TestAdminAPI_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct{ method, path string }{
		{"GET", "/api/admin/stats"},
		{"GET", "/api/admin/umkm"},
		{"POST", "/api/admin/umkm"},
		{"POST", "/api/admin/umkm/bulk"},
		{"GET", "/api/admin/umkm/some-id"},
		{"PATCH", "/api/admin/umkm/some-id"},
		{"DELETE", "/api/admin/umkm/some-id"},
		{"GET", "/api/admin/homepage-images"},
		{"POST", "/api/admin/homepage-images"},
		{"DELETE", "/api/admin/homepage-images/some-id"},
		{"GET", "/api/admin/settings/whatsapp"},
		{"POST", "/api/admin/settings/whatsapp"},
		{"POST", "/api/admin/upload"},
		{"DELETE", "/api/admin/upload"},
		{"POST", "/api/upload"},
		{"DELETE", "/api/upload"},
	}

	garbage := &http.Cookie{Name: service.SessionCookieName, Value: "garbage"}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			for _, cookies := range [][]*http.Cookie{nil, {garbage}} {
				rr := env.do(t, rt.method, rt.path, strings.NewReader(`{}`), cookies...)
				assertStatus(t, rr, http.StatusUnauthorized)

				var resp model.Response
				decodeJSON(t, rr, &resp)
				if resp.Success || resp.Message != "Akses ditolak" {
					t.Errorf("response = %+v", resp)
				}
			}
		})
	}
}

func TestAdminAPI_ManageUMKM(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rr := env.do(t, "POST", "/api/admin/umkm", jsonBody(t, map[string]interface{}{
		"name":     "Gula Aren",
		"category": "Produk Olahan",
		"owner":    "Bu Tini",
		"dusun":    "Krajan",
	}), cookie)
	assertStatus(t, rr, http.StatusCreated)

	var created struct {
		Data model.UMKM `json:"data"`
	}
	decodeJSON(t, rr, &created)

	// Visible publicly until deactivated.
	assertStatus(t, env.do(t, "GET", "/api/umkm/"+created.Data.ID, nil), http.StatusOK)

	rr = env.do(t, "POST", "/api/admin/umkm/bulk", jsonBody(t, map[string]interface{}{
		"action": "deactivate",
		"ids":    []string{created.Data.ID},
	}), cookie)
	assertStatus(t, rr, http.StatusOK)

	assertStatus(t, env.do(t, "GET", "/api/umkm/"+created.Data.ID, nil), http.StatusNotFound)
	assertStatus(t, env.do(t, "GET", "/api/admin/umkm/"+created.Data.ID, nil, cookie), http.StatusOK)
}

// ---------------------------------------------------------------------------
// Pages
// ---------------------------------------------------------------------------

func TestAdminPages_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/admin", "/admin/dashboard", "/admin/umkm", "/admin/umkm/edit/abc", "/admin/settings", "/admin/unknown"} {
		t.Run(path, func(t *testing.T) {
			assertRedirect(t, env.do(t, "GET", path, nil), "/admin/login")
		})
	}

	rr := env.do(t, "GET", "/admin/login", nil)
	assertStatus(t, rr, http.StatusOK)
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
	}
}

func TestAdminPages_Authenticated(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	assertRedirect(t, env.do(t, "GET", "/admin/login", nil, cookie), "/admin/dashboard")
	assertRedirect(t, env.do(t, "GET", "/admin", nil, cookie), "/admin/dashboard")

	for _, path := range []string{"/admin/dashboard", "/admin/umkm", "/admin/umkm/edit/abc", "/admin/homepage-images", "/admin/settings"} {
		assertStatus(t, env.do(t, "GET", path, nil, cookie), http.StatusOK)
	}
	assertStatus(t, env.do(t, "GET", "/admin/unknown", nil, cookie), http.StatusNotFound)
}

func TestPublicPages(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/", "/umkm", "/umkm/abc", "/wisata", "/assets/app.js", "/favicon.svg"} {
		assertStatus(t, env.do(t, "GET", path, nil), http.StatusOK)
	}
}

func TestUIDisabled(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.EnableUI = false })
	assertStatus(t, env.do(t, "GET", "/", nil), http.StatusNotFound)
	assertStatus(t, env.do(t, "GET", "/api/umkm", nil), http.StatusOK)
}

// ---------------------------------------------------------------------------
// Uploads
// ---------------------------------------------------------------------------

func TestUploadsServed(t *testing.T) {
	env := newTestEnv(t)

	url, err := env.uploads.Put(context.Background(), "umkm-test.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	rr := env.do(t, "GET", url, nil)
	assertStatus(t, rr, http.StatusOK)
	if rr.Body.String() != "png-bytes" {
		t.Errorf("body = %q", rr.Body.String())
	}

	assertStatus(t, env.do(t, "GET", "/uploads/", nil), http.StatusNotFound)
	assertStatus(t, env.do(t, "GET", "/uploads/missing.png", nil), http.StatusNotFound)
}

func TestUploadAlias_Authenticated(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	url, err := env.uploads.Put(context.Background(), "umkm-alias.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	rr := env.do(t, "DELETE", "/api/upload?url="+url, nil, cookie)
	assertStatus(t, rr, http.StatusOK)
	assertStatus(t, env.do(t, "GET", url, nil), http.StatusNotFound)

	// Without a multipart body the alias reaches the upload handler, not a 404.
	rr = env.do(t, "POST", "/api/upload", strings.NewReader(`{}`), cookie)
	assertStatus(t, rr, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestRun_ShutsDownOnCancel(t *testing.T) {
	env := newTestEnv(t, func(c *Config) {
		c.Host = "127.0.0.1"
		c.Port = 0
		c.ShutdownTimeout = time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
