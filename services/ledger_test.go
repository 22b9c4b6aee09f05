package services

import (
	"context"
	"testing"

	"Kinolog/apperr"
	"Kinolog/models"
)

func titledPatch(title string) models.MoviePatch {
	var p models.MoviePatch
	p.Title = models.Set(title)
	return p
}

func TestProposeValidation(t *testing.T) {
	// Validation runs before any query, so a nil handle is safe here.
	l := NewLedger(nil)
	contributor := &models.Contributor{ID: 1, Username: "filmfan"}

	tests := []struct {
		name    string
		kind    models.ChangeKind
		movieID int
		patch   models.MoviePatch
	}{
		{"create without title", models.KindCreate, 0, models.MoviePatch{}},
		{"create with blank title", models.KindCreate, 0, titledPatch("   ")},
		{"update without movie reference", models.KindUpdate, 0, titledPatch("Heat")},
		{"delete with negative reference", models.KindDelete, -3, models.MoviePatch{}},
		{"unknown kind", models.ChangeKind("merge"), 7, titledPatch("Heat")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Propose(context.Background(), tt.kind, tt.movieID, tt.patch, contributor)
			if !apperr.IsValidation(err) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}
}

func TestProposeCreateDropsMovieReference(t *testing.T) {
	// A create proposal targets a row that does not exist yet; any reference
	// the caller sends along is noise and must not be stored.
	movieID, err := validateProposal(models.KindCreate, 42, titledPatch("Heat"))
	if err != nil {
		t.Fatalf("validateProposal failed: %v", err)
	}
	if movieID != 0 {
		t.Errorf("movieID = %d, want 0", movieID)
	}
}

func TestProposeUpdateKeepsMovieReference(t *testing.T) {
	movieID, err := validateProposal(models.KindUpdate, 42, titledPatch("Heat"))
	if err != nil {
		t.Fatalf("validateProposal failed: %v", err)
	}
	if movieID != 42 {
		t.Errorf("movieID = %d, want 42", movieID)
	}
}
