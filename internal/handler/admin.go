package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/service"
	"github.com/desajambearum/jambearum/internal/store"
)

// AdminHandler serves the admin session endpoints and the dashboard stats.
type AdminHandler struct {
	store   *store.Store
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(st *store.Store, authSvc *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: st, authSvc: authSvc, logger: orDefault(logger)}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials and sets the session cookie.
// POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username dan password harus diisi")
		return
	}

	user, err := h.authSvc.ValidateCredentials(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.logger.WarnContext(r.Context(), "admin login failed", "username", req.Username)
		writeError(w, http.StatusUnauthorized, "Username atau password salah")
		return
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Username dan password harus diisi")
		return
	case err != nil:
		serverError(w, r, h.logger, "admin login", err)
		return
	}

	token, err := h.authSvc.CreateToken(user)
	if err != nil {
		serverError(w, r, h.logger, "create session token", err)
		return
	}

	h.authSvc.SetSessionCookie(w, token)
	h.logger.InfoContext(r.Context(), "admin logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, model.Response{
		Success: true,
		Message: "Login berhasil",
		User:    model.SessionUser{Username: user.Username, Role: user.Role},
	})
}

// Logout clears the session cookie and, when revocation is enabled,
// denylists the presented token.
// POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(service.SessionCookieName); err == nil && c.Value != "" {
		if err := h.authSvc.Revoke(r.Context(), c.Value); err != nil {
			h.logger.WarnContext(r.Context(), "revoke session token", "error", err)
		}
	}
	h.authSvc.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "Logout berhasil"})
}

// Me returns the identity carried by the session cookie.
// GET /api/admin/me
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authSvc.CurrentAdmin(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Tidak terautentikasi")
		return
	}
	writeJSON(w, http.StatusOK, model.Response{
		Success: true,
		User: model.SessionUser{
			Username:  user.Username,
			Role:      user.Role,
			LoginTime: user.LoginTime,
		},
	})
}

// Stats returns the dashboard counters.
// GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Stats(r.Context())
	if err != nil {
		serverError(w, r, h.logger, "load stats", err)
		return
	}
	writeData(w, http.StatusOK, "", st)
}
