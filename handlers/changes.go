package handlers

import (
	"net/http"

	"Kinolog/apperr"
	"Kinolog/middleware"
	"Kinolog/models"
)

type proposeRequest struct {
	Kind    models.ChangeKind `json:"kind"`
	MovieID int               `json:"movie_id,omitempty"`
	Data    models.MoviePatch `json:"data"`
}

// ProposeChangeHandler records a contributor proposal. The catalogue is not
// touched until an admin approves it.
func (h *Handlers) ProposeChangeHandler(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id.ContributorID == 0 {
		// Admins edit through the approval flow on their own proposals too,
		// but they need a contributor account to propose as.
		writeError(w, apperr.Validation("proposals require a contributor account"))
		return
	}

	var req proposeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	contributor, err := h.Auth.GetContributorByID(r.Context(), id.ContributorID)
	if err != nil {
		writeError(w, err)
		return
	}

	change, err := h.Ledger.Propose(r.Context(), req.Kind, req.MovieID, req.Data, contributor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, change)
}

// ListChangesHandler shows the pending queue: admins see everything,
// contributors only their own entries. The filter is the caller's own
// identity; the ledger does not re-derive it.
func (h *Handlers) ListChangesHandler(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())

	filter := id.ContributorID
	if id.Role == middleware.RoleAdmin {
		filter = 0
	}

	changes, err := h.Ledger.ListPending(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

func (h *Handlers) ApproveChangeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	reviewer := middleware.IdentityFrom(r.Context()).Username

	change, err := h.Approvals.Approve(r.Context(), id, reviewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

type rejectRequest struct {
	Note string `json:"note,omitempty"`
}

func (h *Handlers) RejectChangeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req rejectRequest
	if err := decodeBodyOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reviewer := middleware.IdentityFrom(r.Context()).Username

	change, err := h.Approvals.Reject(r.Context(), id, reviewer, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}
