package handlers

import (
	"log/slog"
	"net/http"

	"Kinolog/apperr"
	"Kinolog/middleware"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Role        string `json:"role"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	ShowGuide   bool   `json:"show_guide,omitempty"`
}

// LoginHandler authenticates against the admin table first, then the
// contributor table, and stores the resolved role on the session.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, apperr.Validation("username and password are required"))
		return
	}

	session, err := h.Sessions.Get(r)
	if err != nil {
		// A stale or tampered cookie still yields a fresh session value
		slog.Warn("Discarding undecodable session", "error", err)
	}

	if user, err := h.Auth.AuthenticateAdmin(r.Context(), req.Username, req.Password); err == nil && user.IsAdmin {
		session.Values["role"] = middleware.RoleAdmin
		session.Values["user_id"] = user.ID
		session.Values["username"] = user.Username
		delete(session.Values, "contributor_id")
		if err := h.Sessions.Save(w, r, session); err != nil {
			writeError(w, err)
			return
		}
		slog.Info("Admin logged in", "username", user.Username)
		writeJSON(w, http.StatusOK, loginResponse{Role: middleware.RoleAdmin, Username: user.Username})
		return
	}

	contributor, err := h.Auth.AuthenticateContributor(r.Context(), req.Username, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "invalid credentials"})
		return
	}

	session.Values["role"] = middleware.RoleContributor
	session.Values["contributor_id"] = contributor.ID
	session.Values["username"] = contributor.Username
	delete(session.Values, "user_id")
	if err := h.Sessions.Save(w, r, session); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Contributor logged in", "username", contributor.Username)
	writeJSON(w, http.StatusOK, loginResponse{
		Role:        middleware.RoleContributor,
		Username:    contributor.Username,
		DisplayName: contributor.DisplayName,
		ShowGuide:   !contributor.SeenGuide,
	})
}

func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Sessions.Get(r)
	session.Options.MaxAge = -1
	if err := h.Sessions.Save(w, r, session); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GuideSeenHandler flips the contributor's one-time onboarding flag.
func (h *Handlers) GuideSeenHandler(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id.ContributorID == 0 {
		writeError(w, apperr.ErrUnauthorized)
		return
	}
	if err := h.Auth.MarkGuideSeen(r.Context(), id.ContributorID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
