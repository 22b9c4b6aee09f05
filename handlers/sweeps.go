package handlers

import "net/http"

type visibilitySweepResponse struct {
	Quarantined int `json:"quarantined"`
}

// VisibilitySweepHandler runs the automated quarantine pass over the
// published catalogue.
func (h *Handlers) VisibilitySweepHandler(w http.ResponseWriter, r *http.Request) {
	gated, err := h.Moderation.SweepVisibility(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visibilitySweepResponse{Quarantined: gated})
}

type classifySweepResponse struct {
	Processed  int `json:"processed"`
	Classified int `json:"classified"`
}

// ClassifySweepHandler runs one bounded batch of the genre backfill.
// Repeated invocations (cron or manual) drain a larger backlog.
func (h *Handlers) ClassifySweepHandler(w http.ResponseWriter, r *http.Request) {
	processed, classified, err := h.Classifier.Sweep(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, classifySweepResponse{Processed: processed, Classified: classified})
}
