package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/store"
)

// whatsappPattern accepts international numbers without "+" or separators.
var whatsappPattern = regexp.MustCompile(`^\d{8,15}$`)

// ValidWhatsApp reports whether s is an acceptable WhatsApp number.
func ValidWhatsApp(s string) bool {
	return whatsappPattern.MatchString(s)
}

// SettingsHandler serves the site settings.
type SettingsHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(st *store.Store, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{store: st, logger: orDefault(logger)}
}

type whatsappPayload struct {
	WhatsApp string `json:"whatsapp"`
}

func (h *SettingsHandler) whatsapp(r *http.Request) (string, error) {
	v, err := h.store.GetSetting(r.Context(), model.SettingAdminWhatsApp)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// GetWhatsApp returns the configured number, or "" when unset.
// GET /api/admin/settings/whatsapp
func (h *SettingsHandler) GetWhatsApp(w http.ResponseWriter, r *http.Request) {
	v, err := h.whatsapp(r)
	if err != nil {
		serverError(w, r, h.logger, "load whatsapp setting", err)
		return
	}
	writeData(w, http.StatusOK, "", whatsappPayload{WhatsApp: v})
}

// SetWhatsApp validates and stores the contact number.
// POST /api/admin/settings/whatsapp
func (h *SettingsHandler) SetWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req whatsappPayload
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}
	number := strings.TrimSpace(req.WhatsApp)
	if !ValidWhatsApp(number) {
		writeError(w, http.StatusBadRequest, "Nomor WhatsApp tidak valid. Gunakan format 62...")
		return
	}
	if err := h.store.SetSetting(r.Context(), model.SettingAdminWhatsApp, number); err != nil {
		serverError(w, r, h.logger, "save whatsapp setting", err)
		return
	}
	writeData(w, http.StatusOK, "Nomor WhatsApp disimpan", whatsappPayload{WhatsApp: number})
}

// Public returns the settings visitors need, falling back to the default
// contact number.
// GET /api/settings/public
func (h *SettingsHandler) Public(w http.ResponseWriter, r *http.Request) {
	v, err := h.whatsapp(r)
	if err != nil {
		serverError(w, r, h.logger, "load public settings", err)
		return
	}
	if v == "" {
		v = model.DefaultWhatsApp
	}
	writeData(w, http.StatusOK, "", whatsappPayload{WhatsApp: v})
}
