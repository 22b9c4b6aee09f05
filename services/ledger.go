package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"Kinolog/apperr"
	"Kinolog/models"

	json "github.com/goccy/go-json"
)

// Ledger records contributor proposals. It never touches the published
// catalogue at proposal time; an admin decision does that through the
// approval workflow. Entries are append-only.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

const changeColumns = `id, kind, movie_id, movie_data, previous_data, contributor_id, contributor_name,
	status, created_at, reviewed_by, reviewed_at, review_note`

func scanChange(row interface{ Scan(dest ...any) error }) (*models.PendingChange, error) {
	var pc models.PendingChange
	var movieID, contributorID sql.NullInt64
	var movieData, previousData []byte
	var reviewedBy, reviewNote sql.NullString
	var reviewedAt sql.NullTime

	err := row.Scan(
		&pc.ID, &pc.Kind, &movieID, &movieData, &previousData, &contributorID, &pc.ContributorName,
		&pc.Status, &pc.CreatedAt, &reviewedBy, &reviewedAt, &reviewNote,
	)
	if err != nil {
		return nil, err
	}

	pc.MovieID = int(movieID.Int64)
	pc.ContributorID = int(contributorID.Int64)
	pc.ReviewedBy = reviewedBy.String
	pc.ReviewNote = reviewNote.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		pc.ReviewedAt = &t
	}
	if err := json.Unmarshal(movieData, &pc.MovieData); err != nil {
		return nil, fmt.Errorf("failed to decode proposal payload for change %d: %w", pc.ID, err)
	}
	if len(previousData) > 0 {
		pc.PreviousData = &models.Movie{}
		if err := json.Unmarshal(previousData, pc.PreviousData); err != nil {
			return nil, fmt.Errorf("failed to decode prior snapshot for change %d: %w", pc.ID, err)
		}
	}
	return &pc, nil
}

// validateProposal checks the kind/ref/payload combination and normalizes
// the movie reference: create proposals never carry one.
func validateProposal(kind models.ChangeKind, movieID int, patch models.MoviePatch) (int, error) {
	switch kind {
	case models.KindCreate:
		if strings.TrimSpace(patch.Title.Get()) == "" {
			return 0, apperr.Validation("a create proposal requires a title")
		}
		return 0, nil
	case models.KindUpdate, models.KindDelete:
		if movieID <= 0 {
			return 0, apperr.Validation("a %s proposal requires a movie reference", kind)
		}
		return movieID, nil
	default:
		return 0, apperr.Validation("unknown change kind %q", kind)
	}
}

// Propose records a contributor proposal with status pending, snapshotting
// the referenced item's current state for update/delete diffs.
func (l *Ledger) Propose(ctx context.Context, kind models.ChangeKind, movieID int, patch models.MoviePatch, contributor *models.Contributor) (*models.PendingChange, error) {
	movieID, err := validateProposal(kind, movieID, patch)
	if err != nil {
		return nil, err
	}

	var previous *models.Movie
	if kind == models.KindUpdate || kind == models.KindDelete {
		m, err := getMovie(ctx, l.db, movieID, false)
		if apperr.IsNotFound(err) {
			return nil, apperr.Validation("movie %d does not exist", movieID)
		}
		if err != nil {
			return nil, err
		}
		previous = m
	}

	movieData, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode proposal payload: %w", err)
	}
	var previousData []byte
	if previous != nil {
		if previousData, err = json.Marshal(previous); err != nil {
			return nil, fmt.Errorf("failed to encode prior snapshot: %w", err)
		}
	}

	pc := &models.PendingChange{
		Kind:            kind,
		MovieID:         movieID,
		MovieData:       patch,
		PreviousData:    previous,
		ContributorID:   contributor.ID,
		ContributorName: contributor.Username,
		Status:          models.StatusPending,
	}

	var movieIDArg any
	if movieID > 0 {
		movieIDArg = movieID
	}
	err = l.db.QueryRowContext(ctx, `
		INSERT INTO pending_changes (kind, movie_id, movie_data, previous_data, contributor_id, contributor_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, created_at
	`, kind, movieIDArg, movieData, previousData, contributor.ID, contributor.Username).Scan(&pc.ID, &pc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert pending change: %w", err)
	}
	return pc, nil
}

// ListPending returns pending proposals newest first. A zero contributorID
// returns all of them (the admin view); the ledger does not re-derive the
// caller's identity.
func (l *Ledger) ListPending(ctx context.Context, contributorID int) ([]models.PendingChange, error) {
	query := "SELECT " + changeColumns + " FROM pending_changes WHERE status = 'pending'"
	args := []any{}
	if contributorID > 0 {
		args = append(args, contributorID)
		query += " AND contributor_id = $1"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending changes: %w", err)
	}
	defer rows.Close()

	changes := []models.PendingChange{}
	for rows.Next() {
		pc, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, *pc)
	}
	return changes, rows.Err()
}

func (l *Ledger) GetChange(ctx context.Context, id int) (*models.PendingChange, error) {
	pc, err := scanChange(l.db.QueryRowContext(ctx,
		"SELECT "+changeColumns+" FROM pending_changes WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("pending change", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending change %d: %w", id, err)
	}
	return pc, nil
}

// ApplyApproval performs the catalogue mutation and the ledger status update
// in one transaction. The status update is guarded by status = 'pending', so
// a concurrently reviewed entry rolls the catalogue write back and reports
// an invalid state instead of double-applying.
func (l *Ledger) ApplyApproval(ctx context.Context, change *models.PendingChange, reviewer string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin approval transaction: %w", err)
	}
	defer tx.Rollback()

	switch change.Kind {
	case models.KindCreate:
		m := &models.Movie{Visibility: models.Visible()}
		change.MovieData.Apply(m)
		if err := insertMovie(ctx, tx, m); err != nil {
			return err
		}
	case models.KindUpdate:
		m, err := getMovie(ctx, tx, change.MovieID, true)
		if err != nil {
			return err
		}
		change.MovieData.Apply(m)
		if err := updateMovieRow(ctx, tx, m); err != nil {
			return err
		}
	case models.KindDelete:
		if err := deleteMovieRow(ctx, tx, change.MovieID); err != nil {
			return err
		}
	default:
		return apperr.Validation("unknown change kind %q", change.Kind)
	}

	if err := markReviewed(ctx, tx, change.ID, models.StatusApproved, reviewer, ""); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}

	change.Status = models.StatusApproved
	change.ReviewedBy = reviewer
	now := time.Now()
	change.ReviewedAt = &now
	return nil
}

// MarkRejected records the decision without any catalogue mutation.
func (l *Ledger) MarkRejected(ctx context.Context, id int, reviewer, note string) error {
	return markReviewed(ctx, l.db, id, models.StatusRejected, reviewer, note)
}

func markReviewed(ctx context.Context, q dbtx, id int, status models.ChangeStatus, reviewer, note string) error {
	var noteArg any
	if note != "" {
		noteArg = note
	}
	res, err := q.ExecContext(ctx, `
		UPDATE pending_changes
		SET status = $1, reviewed_by = $2, reviewed_at = CURRENT_TIMESTAMP, review_note = $3
		WHERE id = $4 AND status = 'pending'
	`, status, reviewer, noteArg, id)
	if err != nil {
		return fmt.Errorf("failed to mark change %d %s: %w", id, status, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.InvalidState("pending change %d is not pending", id)
	}
	return nil
}
