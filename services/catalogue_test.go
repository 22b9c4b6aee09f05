package services

import (
	"context"
	"reflect"
	"testing"

	"Kinolog/apperr"
)

func TestGenresRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		genres []string
		joined string
	}{
		{"empty", nil, ""},
		{"single", []string{"Drama"}, "Drama"},
		{"multiple", []string{"Action", "Sci-Fi", "Thriller"}, "Action, Sci-Fi, Thriller"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinGenres(tt.genres); got != tt.joined {
				t.Errorf("JoinGenres = %q, want %q", got, tt.joined)
			}
			if got := SplitGenres(tt.joined); !reflect.DeepEqual(got, tt.genres) {
				t.Errorf("SplitGenres(%q) = %v, want %v", tt.joined, got, tt.genres)
			}
		})
	}
}

func TestSplitGenresToleratesSloppySpacing(t *testing.T) {
	got := SplitGenres("Action,Drama ,  Horror")
	want := []string{"Action", "Drama", "Horror"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitGenres = %v, want %v", got, want)
	}
}

func TestRateRejectsOutOfRangeScores(t *testing.T) {
	// Validation happens before any store access, so no database is needed
	c := NewCatalogue(nil)

	for _, score := range []int{0, -1, 6, 100} {
		if _, _, err := c.Rate(context.Background(), 1, score); !apperr.IsValidation(err) {
			t.Errorf("Rate(score=%d) error = %v, want ValidationError", score, err)
		}
	}
}
