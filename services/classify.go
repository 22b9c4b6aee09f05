package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"Kinolog/models"
)

// SentinelGenre marks items the lookup could not classify, so the sweep does
// not retry them indefinitely. A human reviewer can spot and fix them.
const SentinelGenre = "Unclassified"

// metadataLookup is the slice of the metadata client the classifier needs.
type metadataLookup interface {
	SearchMovies(ctx context.Context, title string, year int) ([]Candidate, error)
	MovieDetails(ctx context.Context, id int) (*Details, error)
}

// classifyStore is the catalogue slice the classifier needs. Tests
// substitute a fake; Catalogue is the production implementation.
type classifyStore interface {
	ListUnclassified(ctx context.Context, limit int) ([]models.Movie, error)
	SaveClassification(ctx context.Context, id int, genres []string, details *Details) error
}

// Classifier backfills genre classification for items that lack one. It
// never flips visibility; the visibility sweep consumes what it writes.
type Classifier struct {
	store     classifyStore
	meta      metadataLookup
	batchSize int
}

func NewClassifier(store classifyStore, meta metadataLookup, batchSize int) *Classifier {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Classifier{store: store, meta: meta, batchSize: batchSize}
}

// Sweep processes up to the configured batch of unclassified items per
// invocation; cron or a manual trigger drains a larger backlog. A failed
// lookup writes the sentinel genre instead of aborting the batch.
func (c *Classifier) Sweep(ctx context.Context) (processed, classified int, err error) {
	batch, err := c.store.ListUnclassified(ctx, c.batchSize)
	if err != nil {
		return 0, 0, err
	}

	for _, m := range batch {
		// Items already holding a genre list are never candidates; the
		// sweep must not alter them.
		if len(m.Genres) != 0 {
			continue
		}
		processed++

		details, lookupErr := c.lookup(ctx, m.Title, m.Year)
		if lookupErr != nil || len(details.Genres) == 0 {
			slog.Warn("Classification lookup failed, writing sentinel",
				"movie_id", m.ID, "title", m.Title, "error", lookupErr)
			if err := c.store.SaveClassification(ctx, m.ID, []string{SentinelGenre}, nil); err != nil {
				return processed, classified, err
			}
			continue
		}

		if err := c.store.SaveClassification(ctx, m.ID, details.Genres, details); err != nil {
			return processed, classified, err
		}
		classified++
		slog.Info("Movie classified", "movie_id", m.ID, "title", m.Title, "genres", details.Genres)
	}
	return processed, classified, nil
}

func (c *Classifier) lookup(ctx context.Context, title string, year int) (*Details, error) {
	candidates, err := c.meta.SearchMovies(ctx, CleanTitle(title), year)
	if err != nil {
		return nil, err
	}
	match, ok := PickCandidate(candidates, year)
	if !ok {
		return nil, fmt.Errorf("no search results for %q", title)
	}
	return c.meta.MovieDetails(ctx, match.ID)
}

var (
	titleTokenRe = regexp.MustCompile(`(?i)\b(2160p|4k|uhd|1080p|fhd|720p|480p|576p|x264|x265|h264|h265|hevc|avc|xvid|divx|10bit|hdr|web[- ]?dl|webrip|bluray|blu-ray|bdrip|brrip|dvdrip|hdtv|hdrip|camrip|remux|proper|repack|extended|unrated|multi|dual[- ]?audio|aac|ac3|dts|5\.1)\b`)
	yearTokenRe  = regexp.MustCompile(`[\(\[]\d{4}[\)\]]`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// CleanTitle strips quality/encoding tokens and bracketed years so the
// lookup query matches the actual title.
func CleanTitle(title string) string {
	s := strings.NewReplacer(".", " ", "_", " ").Replace(title)
	s = yearTokenRe.ReplaceAllString(s, " ")
	s = titleTokenRe.ReplaceAllString(s, " ")
	s = strings.Trim(spaceRe.ReplaceAllString(s, " "), " -")
	if s == "" {
		return strings.TrimSpace(title)
	}
	return s
}

// PickCandidate prefers an exact release-year match, then the nearest year
// within a tolerance of 1, then the first search result.
func PickCandidate(candidates []Candidate, year int) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	if year <= 0 {
		return candidates[0], true
	}

	best := -1
	bestDiff := 2 // tolerance of 1
	for i, c := range candidates {
		if c.Year == 0 {
			continue
		}
		diff := c.Year - year
		if diff < 0 {
			diff = -diff
		}
		if diff == 0 {
			return c, true
		}
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best >= 0 {
		return candidates[best], true
	}
	return candidates[0], true
}
