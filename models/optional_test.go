package models

import (
	"testing"

	json "github.com/goccy/go-json"
)

func TestOptUnmarshalTriState(t *testing.T) {
	var p MoviePatch
	if err := json.Unmarshal([]byte(`{"title":"Heat","year":null}`), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !p.Title.Present || p.Title.Null {
		t.Errorf("title should be set, got %+v", p.Title)
	}
	if p.Title.Get() != "Heat" {
		t.Errorf("title = %q, want %q", p.Title.Get(), "Heat")
	}
	if !p.Year.Present || !p.Year.Null {
		t.Errorf("year should be explicitly null, got %+v", p.Year)
	}
	if p.Director.Present {
		t.Errorf("director should be absent, got %+v", p.Director)
	}
}

func TestMoviePatchMarshalPreservesAbsence(t *testing.T) {
	p := MoviePatch{
		Title: Set("Heat"),
		Year:  Null[int](),
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("re-unmarshal failed: %v", err)
	}
	if len(raw) != 2 {
		t.Errorf("expected exactly title and year keys, got %v", raw)
	}
	if string(raw["year"]) != "null" {
		t.Errorf("year = %s, want null", raw["year"])
	}

	// Round trip through storage keeps the tri-state intact
	var back MoviePatch
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("round-trip unmarshal failed: %v", err)
	}
	if !back.Year.Null {
		t.Error("year lost its explicit null on round trip")
	}
	if back.Director.Present {
		t.Error("director became present on round trip")
	}
}

func TestMoviePatchApply(t *testing.T) {
	m := Movie{
		Title:  "Old Title",
		Year:   1999,
		Notes:  "keep an eye on this one",
		Genres: []string{"Drama"},
	}

	p := MoviePatch{
		Title:  Set("New Title"),
		Notes:  Null[string](),
		Genres: Set([]string{"Action", "Thriller"}),
	}
	p.Apply(&m)

	if m.Title != "New Title" {
		t.Errorf("title = %q, want %q", m.Title, "New Title")
	}
	if m.Year != 1999 {
		t.Errorf("year changed to %d, absent field must not touch it", m.Year)
	}
	if m.Notes != "" {
		t.Errorf("notes = %q, null field must clear it", m.Notes)
	}
	if len(m.Genres) != 2 || m.Genres[0] != "Action" {
		t.Errorf("genres = %v, set field must replace wholesale", m.Genres)
	}
}
