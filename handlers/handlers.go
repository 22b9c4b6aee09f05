package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"Kinolog/apperr"
	"Kinolog/services"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// Handlers holds the injected services; no package-level state.
type Handlers struct {
	Catalogue  *services.Catalogue
	Ledger     *services.Ledger
	Approvals  *services.Approvals
	Moderation *services.Moderation
	Classifier *services.Classifier
	Auth       *services.Auth
	Sessions   *services.Sessions
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy to HTTP statuses. Anything outside the
// taxonomy is a generic 500; the detail goes to the log, not the caller.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "unauthorized"})
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorPayload{Error: err.Error()})
	case apperr.IsInvalidState(err):
		writeJSON(w, http.StatusConflict, errorPayload{Error: err.Error()})
	case apperr.IsExternal(err):
		writeJSON(w, http.StatusBadGateway, errorPayload{Error: "metadata service unavailable"})
	default:
		slog.Error("Internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// decodeBodyOptional tolerates an empty body. ContentLength is unreliable
// for chunked requests, so emptiness is detected by the decoder itself.
func decodeBodyOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Validation("invalid request body")
}

func urlID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id parameter")
	}
	return id, nil
}

func queryInt(r *http.Request, param string, fallback int) int {
	if s := r.URL.Query().Get(param); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}
