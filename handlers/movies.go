package handlers

import (
	"net/http"

	"Kinolog/models"
)

type movieResponse struct {
	models.Movie
	AverageRating *float64 `json:"average_rating,omitempty"`
}

func toMovieResponse(m models.Movie) movieResponse {
	resp := movieResponse{Movie: m}
	if avg, ok := m.AverageRating(); ok {
		resp.AverageRating = &avg
	}
	return resp
}

// MoviesHandler lists published movies. Quarantined items never appear
// here; optional q/genre/year filters narrow the listing.
func (h *Handlers) MoviesHandler(w http.ResponseWriter, r *http.Request) {
	movies, err := h.Catalogue.ListVisible(r.Context(),
		r.URL.Query().Get("q"),
		r.URL.Query().Get("genre"),
		queryInt(r, "year", 0),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]movieResponse, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) MovieDetailsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := h.Catalogue.GetVisible(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(*m))
}

type rateRequest struct {
	Score int `json:"score"`
}

type rateResponse struct {
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}

func (h *Handlers) RateMovieHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req rateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	avg, count, err := h.Catalogue.Rate(r.Context(), id, req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rateResponse{AverageRating: avg, RatingCount: count})
}
