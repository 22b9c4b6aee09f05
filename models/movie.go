package models

import (
	"time"

	json "github.com/goccy/go-json"
)

type DownloadLink struct {
	Label   string    `json:"label"`
	URL     string    `json:"url"`
	AddedAt time.Time `json:"added_at"`
}

type Movie struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Year         int            `json:"year,omitempty"`
	Director     string         `json:"director,omitempty"`
	Plot         string         `json:"plot,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	Genres       []string       `json:"genres,omitempty"`
	PosterPath   string         `json:"poster_path,omitempty"`
	BackdropPath string         `json:"backdrop_path,omitempty"`
	Links        []DownloadLink `json:"links,omitempty"`
	RatingSum    int64          `json:"rating_sum"`
	RatingCount  int64          `json:"rating_count"`
	Visibility   Visibility     `json:"visibility"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// AverageRating derives the average from the (sum, count) aggregate.
// The average is undefined until the first vote.
func (m Movie) AverageRating() (float64, bool) {
	if m.RatingCount == 0 {
		return 0, false
	}
	return float64(m.RatingSum) / float64(m.RatingCount), true
}

// MoviePatch is a typed proposal payload. Every field is tri-state: absent
// fields leave the target untouched, null fields clear it, set fields
// replace it wholesale (arrays included, no deep merge).
type MoviePatch struct {
	Title        Opt[string]         `json:"title"`
	Year         Opt[int]            `json:"year"`
	Director     Opt[string]         `json:"director"`
	Plot         Opt[string]         `json:"plot"`
	Notes        Opt[string]         `json:"notes"`
	Genres       Opt[[]string]       `json:"genres"`
	PosterPath   Opt[string]         `json:"poster_path"`
	BackdropPath Opt[string]         `json:"backdrop_path"`
	Links        Opt[[]DownloadLink] `json:"links"`
}

// Apply merges the patch onto a movie: exactly the present fields change.
// Rating aggregate and visibility are never part of a proposal.
func (p MoviePatch) Apply(m *Movie) {
	if p.Title.Present {
		m.Title = p.Title.Get()
	}
	if p.Year.Present {
		m.Year = p.Year.Get()
	}
	if p.Director.Present {
		m.Director = p.Director.Get()
	}
	if p.Plot.Present {
		m.Plot = p.Plot.Get()
	}
	if p.Notes.Present {
		m.Notes = p.Notes.Get()
	}
	if p.Genres.Present {
		m.Genres = p.Genres.Get()
	}
	if p.PosterPath.Present {
		m.PosterPath = p.PosterPath.Get()
	}
	if p.BackdropPath.Present {
		m.BackdropPath = p.BackdropPath.Get()
	}
	if p.Links.Present {
		m.Links = p.Links.Get()
	}
}

// MarshalJSON keeps the absent/null distinction across storage: absent
// fields are omitted entirely instead of serializing as null.
func (p MoviePatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, 9)
	if err := putOpt(out, "title", p.Title); err != nil {
		return nil, err
	}
	if err := putOpt(out, "year", p.Year); err != nil {
		return nil, err
	}
	if err := putOpt(out, "director", p.Director); err != nil {
		return nil, err
	}
	if err := putOpt(out, "plot", p.Plot); err != nil {
		return nil, err
	}
	if err := putOpt(out, "notes", p.Notes); err != nil {
		return nil, err
	}
	if err := putOpt(out, "genres", p.Genres); err != nil {
		return nil, err
	}
	if err := putOpt(out, "poster_path", p.PosterPath); err != nil {
		return nil, err
	}
	if err := putOpt(out, "backdrop_path", p.BackdropPath); err != nil {
		return nil, err
	}
	if err := putOpt(out, "links", p.Links); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func putOpt[T any](m map[string]json.RawMessage, key string, o Opt[T]) error {
	if !o.Present {
		return nil
	}
	raw, err := o.MarshalJSON()
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}
