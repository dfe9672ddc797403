package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/store"
)

const msgImageNotFound = "Gambar tidak ditemukan"

// HomepageImageHandler serves homepage imagery publicly and for admins.
type HomepageImageHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewHomepageImageHandler creates a new HomepageImageHandler.
func NewHomepageImageHandler(st *store.Store, logger *slog.Logger) *HomepageImageHandler {
	return &HomepageImageHandler{store: st, logger: orDefault(logger)}
}

// publicImage is the visitor-facing view of a homepage image.
type publicImage struct {
	ID          string  `json:"id"`
	Section     string  `json:"section"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	AltText     string  `json:"altText"`
	SortOrder   int     `json:"sortOrder"`
}

// ListPublic returns active images, optionally for one section.
// GET /api/homepage-images
func (h *HomepageImageHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	images, err := h.store.ListHomepageImages(r.Context(), queryString(r, "section"), true)
	if err != nil {
		serverError(w, r, h.logger, "list homepage images", err)
		return
	}
	out := make([]publicImage, 0, len(images))
	for _, img := range images {
		out = append(out, publicImage{
			ID:          img.ID,
			Section:     img.Section,
			Title:       img.Title,
			Description: img.Description,
			ImageURL:    img.ImageURL,
			AltText:     img.AltText,
			SortOrder:   img.SortOrder,
		})
	}
	count := len(out)
	writeJSON(w, http.StatusOK, model.Response{Success: true, Data: out, Count: &count})
}

// List returns every image, optionally for one section.
// GET /api/admin/homepage-images
func (h *HomepageImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.store.ListHomepageImages(r.Context(), queryString(r, "section"), false)
	if err != nil {
		serverError(w, r, h.logger, "list homepage images", err)
		return
	}
	count := len(images)
	writeJSON(w, http.StatusOK, model.Response{Success: true, Data: images, Count: &count})
}

type createImageRequest struct {
	Section     string  `json:"section"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	AltText     string  `json:"altText"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder"`
}

// Create adds an image. New images are active with sort order 0 unless the
// request says otherwise.
// POST /api/admin/homepage-images
func (h *HomepageImageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createImageRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}
	if blank(req.Section) || blank(req.ImageURL) || blank(req.AltText) {
		writeError(w, http.StatusBadRequest, "Field yang wajib diisi: section, imageUrl, altText")
		return
	}

	img := &model.HomepageImage{
		Section:     req.Section,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		AltText:     req.AltText,
		IsActive:    true,
	}
	if req.IsActive != nil {
		img.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		img.SortOrder = *req.SortOrder
	}

	if err := h.store.CreateHomepageImage(r.Context(), img); err != nil {
		serverError(w, r, h.logger, "create homepage image", err)
		return
	}
	writeData(w, http.StatusCreated, "Gambar berhasil ditambahkan", img)
}

// Get returns one image.
// GET /api/admin/homepage-images/{id}
func (h *HomepageImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	img, err := h.store.GetHomepageImage(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgImageNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, "get homepage image", err)
		return
	}
	writeData(w, http.StatusOK, "", img)
}

type imagePatch struct {
	Section     string         `json:"section"`
	Title       optionalString `json:"title"`
	Description optionalString `json:"description"`
	ImageURL    string         `json:"imageUrl"`
	AltText     string         `json:"altText"`
	IsActive    *bool          `json:"isActive"`
	SortOrder   *int           `json:"sortOrder"`
}

func (p imagePatch) applyTo(img *model.HomepageImage) {
	if !blank(p.Section) {
		img.Section = p.Section
	}
	if !blank(p.ImageURL) {
		img.ImageURL = p.ImageURL
	}
	if !blank(p.AltText) {
		img.AltText = p.AltText
	}
	img.Title = p.Title.apply(img.Title)
	img.Description = p.Description.apply(img.Description)
	if p.IsActive != nil {
		img.IsActive = *p.IsActive
	}
	if p.SortOrder != nil {
		img.SortOrder = *p.SortOrder
	}
}

// Update merges a partial update into an existing image.
// PATCH /api/admin/homepage-images/{id}
func (h *HomepageImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch imagePatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}

	img, err := h.store.GetHomepageImage(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgImageNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, "get homepage image", err)
		return
	}

	patch.applyTo(img)
	if err := h.store.UpdateHomepageImage(r.Context(), img); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgImageNotFound)
			return
		}
		serverError(w, r, h.logger, "update homepage image", err)
		return
	}
	writeData(w, http.StatusOK, "Gambar berhasil diperbarui", img)
}

// Delete removes an image record. The underlying file is left in place.
// DELETE /api/admin/homepage-images/{id}
func (h *HomepageImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteHomepageImage(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgImageNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, "delete homepage image", err)
		return
	}
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "Gambar berhasil dihapus"})
}
