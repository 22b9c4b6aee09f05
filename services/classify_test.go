package services

import (
	"context"
	"errors"
	"testing"

	"Kinolog/models"
)

type fakeClassifyStore struct {
	batch []models.Movie
	saved map[int][]string
}

func (s *fakeClassifyStore) ListUnclassified(ctx context.Context, limit int) ([]models.Movie, error) {
	if limit < len(s.batch) {
		return s.batch[:limit], nil
	}
	return s.batch, nil
}

func (s *fakeClassifyStore) SaveClassification(ctx context.Context, id int, genres []string, details *Details) error {
	if s.saved == nil {
		s.saved = map[int][]string{}
	}
	s.saved[id] = genres
	return nil
}

type fakeLookup struct {
	details   map[string]*Details
	searchErr error
	searches  int
}

func (f *fakeLookup) SearchMovies(ctx context.Context, title string, year int) ([]Candidate, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if _, ok := f.details[title]; !ok {
		return nil, nil
	}
	return []Candidate{{ID: 1, Title: title, Year: year}}, nil
}

func (f *fakeLookup) MovieDetails(ctx context.Context, id int) (*Details, error) {
	for _, d := range f.details {
		return d, nil
	}
	return nil, errors.New("no details")
}

func TestSweepClassifiesAndBackfills(t *testing.T) {
	store := &fakeClassifyStore{batch: []models.Movie{{ID: 5, Title: "Heat", Year: 1995}}}
	meta := &fakeLookup{details: map[string]*Details{
		"Heat": {Genres: []string{"Crime", "Thriller"}, Director: "Michael Mann"},
	}}
	c := NewClassifier(store, meta, 5)

	processed, classified, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if processed != 1 || classified != 1 {
		t.Errorf("processed = %d, classified = %d, want 1 and 1", processed, classified)
	}
	if got := store.saved[5]; len(got) != 2 || got[0] != "Crime" {
		t.Errorf("saved genres = %v, want [Crime Thriller]", got)
	}
}

func TestSweepSkipsAlreadyClassified(t *testing.T) {
	// Items carrying a genre list, the sentinel included, must pass through
	// the sweep untouched no matter how often it runs.
	store := &fakeClassifyStore{batch: []models.Movie{
		{ID: 1, Title: "Heat", Genres: []string{"Crime"}},
		{ID: 2, Title: "Cube", Genres: []string{SentinelGenre}},
	}}
	meta := &fakeLookup{}
	c := NewClassifier(store, meta, 5)

	processed, classified, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if processed != 0 || classified != 0 {
		t.Errorf("processed = %d, classified = %d, want 0 and 0", processed, classified)
	}
	if meta.searches != 0 {
		t.Errorf("lookup called %d times for classified items", meta.searches)
	}
	if len(store.saved) != 0 {
		t.Errorf("sweep wrote %v over existing classifications", store.saved)
	}
}

func TestSweepWritesSentinelAndContinues(t *testing.T) {
	store := &fakeClassifyStore{batch: []models.Movie{
		{ID: 1, Title: "Obscure Short", Year: 1931},
		{ID: 2, Title: "Heat", Year: 1995},
	}}
	meta := &fakeLookup{details: map[string]*Details{
		"Heat": {Genres: []string{"Crime"}},
	}}
	c := NewClassifier(store, meta, 5)

	processed, classified, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if processed != 2 {
		t.Errorf("processed = %d, want 2", processed)
	}
	if classified != 1 {
		t.Errorf("classified = %d, want 1", classified)
	}
	if got := store.saved[1]; len(got) != 1 || got[0] != SentinelGenre {
		t.Errorf("failed lookup saved %v, want the sentinel genre", got)
	}
	if got := store.saved[2]; len(got) != 1 || got[0] != "Crime" {
		t.Errorf("saved genres = %v, want [Crime]", got)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title untouched", "Heat", "Heat"},
		{"dots become spaces", "The.Thing.1982", "The Thing 1982"},
		{"resolution stripped", "Oldboy 1080p WEBRip", "Oldboy"},
		{"codec and source stripped", "Akira.1988.BluRay.x264-GROUP", "Akira 1988 -GROUP"},
		{"bracketed year stripped", "Stalker (1979) 720p", "Stalker"},
		{"underscores and 4k", "Blade_Runner_4K_HDR", "Blade Runner"},
		{"everything stripped falls back", "1080p x265", "1080p x265"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.input); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPickCandidate(t *testing.T) {
	candidates := []Candidate{
		{ID: 1, Title: "Solaris", Year: 2002},
		{ID: 2, Title: "Solaris", Year: 1972},
		{ID: 3, Title: "Solaris", Year: 1971},
	}

	tests := []struct {
		name   string
		cands  []Candidate
		year   int
		wantID int
		wantOK bool
	}{
		{"exact year wins", candidates, 1972, 2, true},
		{"nearest within tolerance", candidates, 1970, 3, true},
		{"outside tolerance falls back to first", candidates, 1990, 1, true},
		{"no year takes first", candidates, 0, 1, true},
		{"empty input", nil, 1972, 0, false},
		{"candidates without years", []Candidate{{ID: 9}, {ID: 10}}, 1972, 9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickCandidate(tt.cands, tt.year)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Errorf("picked id %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}
