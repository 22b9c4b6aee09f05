package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"

	"Kinolog/apperr"

	json "github.com/goccy/go-json"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", apperr.Validation("score must be between 1 and 5"), 400},
		{"unauthorized", apperr.ErrUnauthorized, 401},
		{"not found", apperr.NotFound("movie", 9), 404},
		{"invalid state", apperr.InvalidState("already reviewed"), 409},
		{"external", apperr.External("tmdb", errors.New("timeout")), 502},
		{"anything else", errors.New("pq: connection refused"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var payload errorPayload
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("body is not an error payload: %v", err)
			}
			if payload.Error == "" {
				t.Error("error payload must carry a message")
			}
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: password authentication failed for user kinolog"))

	var payload errorPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("body is not an error payload: %v", err)
	}
	if payload.Error != "internal error" {
		t.Errorf("internal detail leaked to the caller: %q", payload.Error)
	}
}
