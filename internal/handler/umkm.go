package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/store"
)

const msgUMKMNotFound = "UMKM tidak ditemukan"

// UMKMHandler serves the public directory and its admin management API.
type UMKMHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUMKMHandler creates a new UMKMHandler.
func NewUMKMHandler(st *store.Store, logger *slog.Logger) *UMKMHandler {
	return &UMKMHandler{store: st, logger: orDefault(logger)}
}

// ---------------------------------------------------------------------------
// Public
// ---------------------------------------------------------------------------

// ListPublic returns active entries, newest first, optionally filtered by
// category, dusun or a search term.
// GET /api/umkm
func (h *UMKMHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListUMKM(r.Context(), model.UMKMFilter{
		ActiveOnly: true,
		Category:   queryString(r, "category"),
		Dusun:      queryString(r, "dusun"),
		Search:     queryString(r, "q"),
	})
	if err != nil {
		serverError(w, r, h.logger, "list umkm", err)
		return
	}
	count := len(list)
	writeJSON(w, http.StatusOK, model.Response{Success: true, Data: list, Count: &count})
}

// GetPublic returns one active entry. Inactive entries are reported as
// missing.
// GET /api/umkm/{id}
func (h *UMKMHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.GetActiveUMKM(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgUMKMNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, "get umkm", err)
		return
	}
	writeData(w, http.StatusOK, "", u)
}

// ---------------------------------------------------------------------------
// Admin
// ---------------------------------------------------------------------------

// List returns every entry regardless of status, newest first.
// GET /api/admin/umkm
func (h *UMKMHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListUMKM(r.Context(), model.UMKMFilter{
		Category: queryString(r, "category"),
		Dusun:    queryString(r, "dusun"),
		Search:   queryString(r, "q"),
	})
	if err != nil {
		serverError(w, r, h.logger, "list umkm", err)
		return
	}
	count := len(list)
	writeJSON(w, http.StatusOK, model.Response{Success: true, Data: list, Count: &count})
}

type createUMKMRequest struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Category    string   `json:"category"`
	Owner       string   `json:"owner"`
	Phone       *string  `json:"phone"`
	Address     *string  `json:"address"`
	Dusun       string   `json:"dusun"`
	Products    []string `json:"products"`
	Image       *string  `json:"image"`
}

// Create adds a new, active entry.
// POST /api/admin/umkm
func (h *UMKMHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUMKMRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}
	if blank(req.Name) || blank(req.Category) || blank(req.Owner) || blank(req.Dusun) {
		writeError(w, http.StatusBadRequest, "Field yang wajib diisi: name, category, owner, dusun")
		return
	}

	u := &model.UMKM{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Owner:       req.Owner,
		Phone:       req.Phone,
		Address:     req.Address,
		Dusun:       req.Dusun,
		Products:    req.Products,
		Image:       req.Image,
		IsActive:    true,
	}
	if err := h.store.CreateUMKM(r.Context(), u); err != nil {
		serverError(w, r, h.logger, "create umkm", err)
		return
	}
	writeData(w, http.StatusCreated, "UMKM berhasil ditambahkan", u)
}

// Get returns one entry regardless of status.
// GET /api/admin/umkm/{id}
func (h *UMKMHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.GetUMKM(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgUMKMNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, "get umkm", err)
		return
	}
	writeData(w, http.StatusOK, "", u)
}

// umkmPatch is a partial update. Required text fields left empty keep their
// current value; nullable fields replace the current value whenever the key
// is present, including an explicit null.
type umkmPatch struct {
	Name        string         `json:"name"`
	Description optionalString `json:"description"`
	Category    string         `json:"category"`
	Owner       string         `json:"owner"`
	Phone       optionalString `json:"phone"`
	Address     optionalString `json:"address"`
	Dusun       string         `json:"dusun"`
	Products    *[]string      `json:"products"`
	Image       optionalString `json:"image"`
	IsActive    *bool          `json:"isActive"`
}

func (p umkmPatch) applyTo(u *model.UMKM) {
	if !blank(p.Name) {
		u.Name = p.Name
	}
	if !blank(p.Category) {
		u.Category = p.Category
	}
	if !blank(p.Owner) {
		u.Owner = p.Owner
	}
	if !blank(p.Dusun) {
		u.Dusun = p.Dusun
	}
	u.Description = p.Description.apply(u.Description)
	u.Phone = p.Phone.apply(u.Phone)
	u.Address = p.Address.apply(u.Address)
	u.Image = p.Image.apply(u.Image)
	if p.Products != nil {
		u.Products = *p.Products
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
}

// Update merges a partial update into an existing entry.
// PATCH /api/admin/umkm/{id}
func (h *UMKMHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch umkmPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}

	u, err := h.store.GetUMKM(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgUMKMNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, "get umkm", err)
		return
	}

	patch.applyTo(u)
	if err := h.store.UpdateUMKM(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgUMKMNotFound)
			return
		}
		serverError(w, r, h.logger, "update umkm", err)
		return
	}
	writeData(w, http.StatusOK, "UMKM berhasil diperbarui", u)
}

// Delete removes an entry.
// DELETE /api/admin/umkm/{id}
func (h *UMKMHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteUMKM(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgUMKMNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, "delete umkm", err)
		return
	}
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "UMKM berhasil dihapus"})
}

type bulkRequest struct {
	Action model.BulkAction `json:"action"`
	IDs    []string         `json:"ids"`
}

// Bulk activates, deactivates or deletes many entries in one statement and
// reports how many were affected. Unknown IDs are ignored.
// POST /api/admin/umkm/bulk
func (h *UMKMHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := readJSON(r, &req); err != nil || req.Action == "" || len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "Data permintaan tidak valid")
		return
	}
	if !req.Action.Valid() {
		writeError(w, http.StatusBadRequest, "Aksi tidak valid")
		return
	}

	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	var (
		n    int64
		err  error
		verb string
	)
	switch req.Action {
	case model.BulkActivate:
		n, err = h.store.SetUMKMActive(r.Context(), ids, true)
		verb = "diaktifkan"
	case model.BulkDeactivate:
		n, err = h.store.SetUMKMActive(r.Context(), ids, false)
		verb = "dinonaktifkan"
	case model.BulkDelete:
		n, err = h.store.DeleteUMKMs(r.Context(), ids)
		verb = "dihapus"
	}
	if err != nil {
		serverError(w, r, h.logger, "bulk umkm", err)
		return
	}

	h.logger.InfoContext(r.Context(), "bulk umkm action", "action", req.Action, "requested", len(ids), "affected", n)
	writeJSON(w, http.StatusOK, model.Response{
		Success:  true,
		Message:  fmt.Sprintf("%d UMKM berhasil %s", n, verb),
		Affected: &n,
	})
}
