package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/storage"
)

// MaxUploadSize is the largest accepted image.
const MaxUploadSize = 5 << 20

// allowedImageTypes maps accepted content types to the extension stored
// files get. The client's filename never chooses the extension, so nothing
// under /uploads is served as HTML or SVG.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// UploadHandler stores images for UMKM entries and the homepage.
type UploadHandler struct {
	blobs  storage.BlobStore
	logger *slog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(blobs storage.BlobStore, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{blobs: blobs, logger: orDefault(logger)}
}

// Upload accepts a multipart "file" field.
// POST /api/admin/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around a maximum-size file.
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusBadRequest, "File terlalu besar. Maksimal 5MB.")
			return
		}
		writeError(w, http.StatusBadRequest, "Tidak ada file yang diunggah")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Tidak ada file yang diunggah")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		writeError(w, http.StatusBadRequest, "Tipe file tidak valid. Hanya JPEG, PNG, WebP, dan GIF yang diizinkan.")
		return
	}
	if header.Size > MaxUploadSize {
		writeError(w, http.StatusBadRequest, "File terlalu besar. Maksimal 5MB.")
		return
	}

	name := "umkm-" + uuid.NewString() + "." + allowedImageTypes[contentType]
	url, err := h.blobs.Put(r.Context(), name, file)
	if err != nil {
		serverError(w, r, h.logger, "store upload", err)
		return
	}

	h.logger.InfoContext(r.Context(), "file uploaded", "name", name, "size", header.Size, "type", contentType)
	writeData(w, http.StatusOK, "File berhasil diunggah", model.UploadResult{
		Filename:     name,
		OriginalName: header.Filename,
		Size:         header.Size,
		Type:         contentType,
		URL:          url,
	})
}

// Delete removes a previously uploaded file by URL.
// DELETE /api/admin/upload?url=
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	url := queryString(r, "url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "URL file tidak diberikan")
		return
	}

	err := h.blobs.Delete(r.Context(), url)
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "URL file tidak valid")
		return
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "File tidak ditemukan")
		return
	case err != nil:
		serverError(w, r, h.logger, "delete upload", err)
		return
	}
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "File berhasil dihapus"})
}
