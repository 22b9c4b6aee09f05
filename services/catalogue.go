package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"Kinolog/apperr"
	"Kinolog/models"

	json "github.com/goccy/go-json"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the movie row helpers can
// run standalone or inside the approval transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Catalogue is the published-item store. Quarantined items stay in the same
// table and are filtered out of public listings by visibility.
type Catalogue struct {
	db *sql.DB
}

func NewCatalogue(db *sql.DB) *Catalogue {
	return &Catalogue{db: db}
}

const movieColumns = `id, title, year, director, plot, notes, genres, poster_path, backdrop_path, links,
	rating_sum, rating_count, visibility, quarantine_reason, visibility_updated_at, created_at, updated_at`

func scanMovie(row interface{ Scan(dest ...any) error }) (*models.Movie, error) {
	var m models.Movie
	var genres string
	var links []byte
	var visibility string
	var reason sql.NullString
	var visUpdated sql.NullTime

	err := row.Scan(
		&m.ID, &m.Title, &m.Year, &m.Director, &m.Plot, &m.Notes, &genres,
		&m.PosterPath, &m.BackdropPath, &links,
		&m.RatingSum, &m.RatingCount, &visibility, &reason, &visUpdated,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Genres = SplitGenres(genres)
	if len(links) > 0 {
		if err := json.Unmarshal(links, &m.Links); err != nil {
			return nil, fmt.Errorf("failed to decode links for movie %d: %w", m.ID, err)
		}
	}
	if visibility == string(models.StateQuarantined) {
		m.Visibility = models.Quarantined(reason.String, visUpdated.Time)
	} else {
		m.Visibility = models.Visible()
	}
	return &m, nil
}

func getMovie(ctx context.Context, q dbtx, id int, forUpdate bool) (*models.Movie, error) {
	query := "SELECT " + movieColumns + " FROM movies WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	m, err := scanMovie(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("movie", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load movie %d: %w", id, err)
	}
	return m, nil
}

func insertMovie(ctx context.Context, q dbtx, m *models.Movie) error {
	links, err := json.Marshal(m.Links)
	if err != nil {
		return fmt.Errorf("failed to encode links: %w", err)
	}
	state := string(m.Visibility.State())
	reason, visAt, quarantined := m.Visibility.Quarantine()

	query := `
		INSERT INTO movies (title, year, director, plot, notes, genres, poster_path, backdrop_path, links,
			visibility, quarantine_reason, visibility_updated_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP)
		RETURNING id
	`
	var reasonArg, visAtArg any
	if quarantined {
		reasonArg, visAtArg = reason, visAt
	}
	err = q.QueryRowContext(ctx, query,
		m.Title, m.Year, m.Director, m.Plot, m.Notes, JoinGenres(m.Genres),
		m.PosterPath, m.BackdropPath, links, state, reasonArg, visAtArg,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}
	return nil
}

func updateMovieRow(ctx context.Context, q dbtx, m *models.Movie) error {
	links, err := json.Marshal(m.Links)
	if err != nil {
		return fmt.Errorf("failed to encode links: %w", err)
	}
	query := `
		UPDATE movies
		SET title = $1, year = $2, director = $3, plot = $4, notes = $5, genres = $6,
			poster_path = $7, backdrop_path = $8, links = $9, updated_at = CURRENT_TIMESTAMP
		WHERE id = $10
	`
	res, err := q.ExecContext(ctx, query,
		m.Title, m.Year, m.Director, m.Plot, m.Notes, JoinGenres(m.Genres),
		m.PosterPath, m.BackdropPath, links, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update movie %d: %w", m.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("movie", m.ID)
	}
	return nil
}

func deleteMovieRow(ctx context.Context, q dbtx, id int) error {
	res, err := q.ExecContext(ctx, "DELETE FROM movies WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete movie %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("movie", id)
	}
	return nil
}

// Get returns one movie by id regardless of visibility.
func (c *Catalogue) Get(ctx context.Context, id int) (*models.Movie, error) {
	return getMovie(ctx, c.db, id, false)
}

// GetVisible returns one movie by id, treating quarantined items as absent.
func (c *Catalogue) GetVisible(ctx context.Context, id int) (*models.Movie, error) {
	m, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Visibility.IsQuarantined() {
		return nil, apperr.NotFound("movie", id)
	}
	return m, nil
}

// ListVisible returns published movies for public browsing, newest first.
// Optional title search and genre/year filters.
func (c *Catalogue) ListVisible(ctx context.Context, search, genre string, year int) ([]models.Movie, error) {
	query := "SELECT " + movieColumns + " FROM movies WHERE visibility = 'visible'"
	args := []any{}

	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	if genre != "" {
		args = append(args, "%"+genre+"%")
		query += fmt.Sprintf(" AND genres ILIKE $%d", len(args))
	}
	if year > 0 {
		args = append(args, year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

// ListUnclassified returns the oldest items still lacking a genre
// classification, capped to the sweep batch size.
func (c *Catalogue) ListUnclassified(ctx context.Context, limit int) ([]models.Movie, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE genres = '' OR genres IS NULL ORDER BY id ASC LIMIT $1",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unclassified movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

// SaveClassification writes the resolved genre list and backfills the
// descriptive fields still empty on the row. Nil details writes only the
// genres (the sentinel case).
func (c *Catalogue) SaveClassification(ctx context.Context, id int, genres []string, details *Details) error {
	if details == nil {
		_, err := c.db.ExecContext(ctx,
			"UPDATE movies SET genres = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2",
			JoinGenres(genres), id)
		if err != nil {
			return fmt.Errorf("failed to write genres for movie %d: %w", id, err)
		}
		return nil
	}

	_, err := c.db.ExecContext(ctx, `
		UPDATE movies
		SET genres = $1,
			director = CASE WHEN director = '' THEN $2 ELSE director END,
			plot = CASE WHEN plot = '' THEN $3 ELSE plot END,
			poster_path = CASE WHEN poster_path = '' THEN $4 ELSE poster_path END,
			backdrop_path = CASE WHEN backdrop_path = '' THEN $5 ELSE backdrop_path END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
	`, JoinGenres(genres), details.Director, details.Overview, details.PosterPath, details.BackdropPath, id)
	if err != nil {
		return fmt.Errorf("failed to save classification for movie %d: %w", id, err)
	}
	return nil
}

// Rate records a vote and returns the fresh aggregate. Sum and count move
// together in a single conditional update so the derived average stays
// consistent under concurrent votes. No per-voter dedup exists; observed
// behavior, kept pending product confirmation.
func (c *Catalogue) Rate(ctx context.Context, id, score int) (average float64, count int64, err error) {
	if score < 1 || score > 5 {
		return 0, 0, apperr.Validation("score must be between 1 and 5, got %d", score)
	}

	var sum int64
	err = c.db.QueryRowContext(ctx, `
		UPDATE movies
		SET rating_sum = rating_sum + $1, rating_count = rating_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING rating_sum, rating_count
	`, score, id).Scan(&sum, &count)
	if err == sql.ErrNoRows {
		return 0, 0, apperr.NotFound("movie", id)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to rate movie %d: %w", id, err)
	}
	return float64(sum) / float64(count), count, nil
}

// JoinGenres stores a genre list the way the rest of the schema expects it,
// as a comma-separated string.
func JoinGenres(genres []string) string {
	return strings.Join(genres, ", ")
}

func SplitGenres(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
