package handlers

import (
	"net/http"

	"Kinolog/models"
)

func (h *Handlers) ListQuarantinedHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.Moderation.ListQuarantined(r.Context(),
		queryInt(r, "limit", 50),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type quarantineRequest struct {
	Reason string `json:"reason"`
}

func (h *Handlers) QuarantineMovieHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req quarantineRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Moderation.Quarantine(r.Context(), id, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type correctRequest struct {
	Data    models.MoviePatch `json:"data"`
	Restore bool              `json:"restore"`
}

// CorrectMovieHandler applies an admin correction, optionally restoring
// visibility in the same call.
func (h *Handlers) CorrectMovieHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req correctRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	m, err := h.Moderation.CorrectAndMaybeRestore(r.Context(), id, req.Data, req.Restore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(*m))
}
