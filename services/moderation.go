package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"Kinolog/apperr"
	"Kinolog/models"
)

// QuarantineCriteria are the attributes the visibility sweep requires of a
// published item. Product-specific thresholds, supplied from configuration.
type QuarantineCriteria struct {
	RequireGenres bool
	RequirePoster bool
	RequirePlot   bool
}

// QuarantinedMovie is the admin review-queue view of a gated item.
type QuarantinedMovie struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Year     int    `json:"year,omitempty"`
	Director string `json:"director,omitempty"`
	Reason   string `json:"reason"`
}

// Moderation gates catalogue items out of public listings without deleting
// them, and lets admins correct the underlying data before restoring.
type Moderation struct {
	db       *sql.DB
	criteria QuarantineCriteria
}

func NewModeration(db *sql.DB, criteria QuarantineCriteria) *Moderation {
	return &Moderation{db: db, criteria: criteria}
}

// ListQuarantined returns gated items sorted by title, paginated.
func (md *Moderation) ListQuarantined(ctx context.Context, limit, offset int) ([]QuarantinedMovie, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := md.db.QueryContext(ctx, `
		SELECT id, title, year, director, COALESCE(quarantine_reason, '')
		FROM movies
		WHERE visibility = 'quarantined'
		ORDER BY title ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list quarantined movies: %w", err)
	}
	defer rows.Close()

	out := []QuarantinedMovie{}
	for rows.Next() {
		var qm QuarantinedMovie
		if err := rows.Scan(&qm.ID, &qm.Title, &qm.Year, &qm.Director, &qm.Reason); err != nil {
			return nil, err
		}
		out = append(out, qm)
	}
	return out, rows.Err()
}

// Quarantine gates one item by explicit admin action.
func (md *Moderation) Quarantine(ctx context.Context, id int, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperr.Validation("a quarantine reason is required")
	}

	res, err := md.db.ExecContext(ctx, `
		UPDATE movies
		SET visibility = 'quarantined', quarantine_reason = $1, visibility_updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, reason, id)
	if err != nil {
		return fmt.Errorf("failed to quarantine movie %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("movie", id)
	}

	slog.Info("Movie quarantined", "movie_id", id, "reason", reason)
	return nil
}

// CorrectAndMaybeRestore applies a partial field update and, when restore is
// set, returns the item to the visible state in the same call.
func (md *Moderation) CorrectAndMaybeRestore(ctx context.Context, id int, patch models.MoviePatch, restore bool) (*models.Movie, error) {
	tx, err := md.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin correction transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := getMovie(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	patch.Apply(m)
	if err := updateMovieRow(ctx, tx, m); err != nil {
		return nil, err
	}

	if restore {
		if _, err := tx.ExecContext(ctx, `
			UPDATE movies
			SET visibility = 'visible', quarantine_reason = NULL, visibility_updated_at = CURRENT_TIMESTAMP
			WHERE id = $1
		`, id); err != nil {
			return nil, fmt.Errorf("failed to restore movie %d: %w", id, err)
		}
		m.Visibility = models.Visible()
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit correction: %w", err)
	}

	slog.Info("Movie corrected", "movie_id", id, "restored", restore)
	return m, nil
}

// SweepVisibility quarantines visible items missing the attributes the
// criteria require. It returns how many items were gated. The sweep never
// restores visibility; only an explicit admin action does that.
func (md *Moderation) SweepVisibility(ctx context.Context) (int, error) {
	rows, err := md.db.QueryContext(ctx, `
		SELECT id, genres, poster_path, plot
		FROM movies
		WHERE visibility = 'visible'
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to scan movies for visibility sweep: %w", err)
	}
	defer rows.Close()

	type flagged struct {
		id     int
		reason string
	}
	var toGate []flagged
	for rows.Next() {
		var id int
		var genres, poster, plot string
		if err := rows.Scan(&id, &genres, &poster, &plot); err != nil {
			return 0, err
		}
		if reason, ok := QuarantineReason(md.criteria, SplitGenres(genres), poster, plot); ok {
			toGate = append(toGate, flagged{id: id, reason: reason})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	gated := 0
	for _, f := range toGate {
		_, err := md.db.ExecContext(ctx, `
			UPDATE movies
			SET visibility = 'quarantined', quarantine_reason = $1, visibility_updated_at = CURRENT_TIMESTAMP
			WHERE id = $2 AND visibility = 'visible'
		`, f.reason, f.id)
		if err != nil {
			return gated, fmt.Errorf("failed to quarantine movie %d during sweep: %w", f.id, err)
		}
		gated++
		slog.Info("Sweep quarantined movie", "movie_id", f.id, "reason", f.reason)
	}
	return gated, nil
}

// QuarantineReason reports whether an item fails the criteria and why.
func QuarantineReason(c QuarantineCriteria, genres []string, posterPath, plot string) (string, bool) {
	var missing []string
	if c.RequireGenres && len(genres) == 0 {
		missing = append(missing, "genre classification")
	}
	if c.RequirePoster && posterPath == "" {
		missing = append(missing, "poster artwork")
	}
	if c.RequirePlot && plot == "" {
		missing = append(missing, "synopsis")
	}
	if len(missing) == 0 {
		return "", false
	}
	return "missing " + strings.Join(missing, ", "), true
}
