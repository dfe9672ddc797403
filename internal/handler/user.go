package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/store"
)

// UserHandler serves the registered visitor directory.
type UserHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(st *store.Store, logger *slog.Logger) *UserHandler {
	return &UserHandler{store: st, logger: orDefault(logger)}
}

// List returns every user, newest first.
// GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		serverError(w, r, h.logger, "list users", err)
		return
	}
	writeData(w, http.StatusOK, "", users)
}

type createUserRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Create registers a user by email.
// POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email wajib diisi")
		return
	}

	u := &model.User{Email: email, Name: req.Name}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "Email sudah terdaftar")
			return
		}
		serverError(w, r, h.logger, "create user", err)
		return
	}
	writeData(w, http.StatusCreated, "", u)
}
