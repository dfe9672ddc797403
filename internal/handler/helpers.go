package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/desajambearum/jambearum/internal/model"
)

const msgServerError = "Terjadi kesalahan server"

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeData writes a success envelope carrying data.
func writeData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, model.Response{Success: true, Message: message, Data: data})
}

// writeError writes a failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Response{Success: false, Message: message})
}

// serverError logs err with the request context and answers 500 without
// leaking details to the client.
func serverError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(r.Context(), msg,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	writeError(w, http.StatusInternalServerError, msgServerError)
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// queryString extracts a trimmed string query parameter.
func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// blank reports whether s is empty after trimming whitespace.
func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// optionalString distinguishes a JSON field that was omitted from one that
// was sent, possibly as null. Set is true whenever the key was present.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// apply returns the new value when the field was sent and cur otherwise.
func (o optionalString) apply(cur *string) *string {
	if o.Set {
		return o.Value
	}
	return cur
}
