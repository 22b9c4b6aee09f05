package services

import (
	"context"
	"log/slog"
	"time"

	"Kinolog/apperr"
	"Kinolog/models"
)

// approvalStore is the slice of the ledger the workflow needs. Tests
// substitute a fake; the SQL Ledger is the production implementation.
type approvalStore interface {
	GetChange(ctx context.Context, id int) (*models.PendingChange, error)
	ApplyApproval(ctx context.Context, change *models.PendingChange, reviewer string) error
	MarkRejected(ctx context.Context, id int, reviewer, note string) error
}

// Approvals drives the pending → approved/rejected state machine. Both
// transitions are terminal; re-reviewing fails with an invalid state error.
// Role enforcement happens at the HTTP boundary before this is reached.
type Approvals struct {
	store approvalStore
}

func NewApprovals(store approvalStore) *Approvals {
	return &Approvals{store: store}
}

// Approve applies the proposed payload to the catalogue and marks the entry
// approved. The two writes commit together; on failure the entry stays
// pending.
func (a *Approvals) Approve(ctx context.Context, id int, reviewer string) (*models.PendingChange, error) {
	change, err := a.store.GetChange(ctx, id)
	if err != nil {
		return nil, err
	}
	if change.Status != models.StatusPending {
		return nil, apperr.InvalidState("pending change %d already reviewed (%s)", id, change.Status)
	}

	if err := a.store.ApplyApproval(ctx, change, reviewer); err != nil {
		return nil, err
	}

	slog.Info("Pending change approved", "change_id", id, "kind", change.Kind, "reviewer", reviewer)
	return change, nil
}

// Reject marks the entry rejected. No catalogue mutation occurs.
func (a *Approvals) Reject(ctx context.Context, id int, reviewer, note string) (*models.PendingChange, error) {
	change, err := a.store.GetChange(ctx, id)
	if err != nil {
		return nil, err
	}
	if change.Status != models.StatusPending {
		return nil, apperr.InvalidState("pending change %d already reviewed (%s)", id, change.Status)
	}

	if err := a.store.MarkRejected(ctx, id, reviewer, note); err != nil {
		return nil, err
	}

	change.Status = models.StatusRejected
	change.ReviewedBy = reviewer
	change.ReviewNote = note
	now := time.Now()
	change.ReviewedAt = &now

	slog.Info("Pending change rejected", "change_id", id, "reviewer", reviewer)
	return change, nil
}
