package handlers

import (
	"log/slog"
	"net/http"

	"Kinolog/middleware"
)

type createContributorRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (h *Handlers) CreateContributorHandler(w http.ResponseWriter, r *http.Request) {
	var req createContributorRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.Auth.CreateContributor(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Contributor created", "username", c.Username, "by", middleware.IdentityFrom(r.Context()).Username)
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) DeactivateContributorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Auth.DeactivateContributor(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Contributor deactivated", "contributor_id", id, "by", middleware.IdentityFrom(r.Context()).Username)
	w.WriteHeader(http.StatusOK)
}
