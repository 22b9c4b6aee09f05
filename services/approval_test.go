package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"Kinolog/apperr"
	"Kinolog/models"
)

type fakeApprovalStore struct {
	changes  map[int]*models.PendingChange
	applyErr error
	applied  []int
	rejected []int
}

func newFakeApprovalStore(changes ...*models.PendingChange) *fakeApprovalStore {
	s := &fakeApprovalStore{changes: map[int]*models.PendingChange{}}
	for _, c := range changes {
		s.changes[c.ID] = c
	}
	return s
}

func (s *fakeApprovalStore) GetChange(ctx context.Context, id int) (*models.PendingChange, error) {
	c, ok := s.changes[id]
	if !ok {
		return nil, apperr.NotFound("pending change", id)
	}
	cp := *c
	return &cp, nil
}

func (s *fakeApprovalStore) ApplyApproval(ctx context.Context, change *models.PendingChange, reviewer string) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	stored := s.changes[change.ID]
	if stored.Status != models.StatusPending {
		return apperr.InvalidState("pending change %d is not pending", change.ID)
	}
	now := time.Now()
	stored.Status = models.StatusApproved
	stored.ReviewedBy = reviewer
	stored.ReviewedAt = &now
	change.Status = models.StatusApproved
	change.ReviewedBy = reviewer
	change.ReviewedAt = &now
	s.applied = append(s.applied, change.ID)
	return nil
}

func (s *fakeApprovalStore) MarkRejected(ctx context.Context, id int, reviewer, note string) error {
	stored := s.changes[id]
	if stored.Status != models.StatusPending {
		return apperr.InvalidState("pending change %d is not pending", id)
	}
	stored.Status = models.StatusRejected
	stored.ReviewedBy = reviewer
	stored.ReviewNote = note
	s.rejected = append(s.rejected, id)
	return nil
}

func pendingChange(id int, kind models.ChangeKind) *models.PendingChange {
	return &models.PendingChange{
		ID:              id,
		Kind:            kind,
		MovieID:         7,
		Status:          models.StatusPending,
		ContributorName: "filmfan",
	}
}

func TestApproveTransitionsOnce(t *testing.T) {
	store := newFakeApprovalStore(pendingChange(1, models.KindUpdate))
	a := NewApprovals(store)

	change, err := a.Approve(context.Background(), 1, "admin")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if change.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", change.Status)
	}
	if change.ReviewedBy != "admin" {
		t.Errorf("reviewer = %q, want admin", change.ReviewedBy)
	}
	if change.ReviewedAt == nil {
		t.Error("approval must stamp the review time")
	}
	if len(store.applied) != 1 {
		t.Errorf("applied %d times, want 1", len(store.applied))
	}

	// Terminal: a second review must fail without touching the catalogue
	if _, err := a.Approve(context.Background(), 1, "admin"); !apperr.IsInvalidState(err) {
		t.Errorf("re-approve error = %v, want InvalidStateError", err)
	}
	if _, err := a.Reject(context.Background(), 1, "admin", ""); !apperr.IsInvalidState(err) {
		t.Errorf("reject after approve error = %v, want InvalidStateError", err)
	}
	if len(store.applied) != 1 {
		t.Errorf("catalogue touched again: applied %d times", len(store.applied))
	}
}

func TestApproveMissingChange(t *testing.T) {
	a := NewApprovals(newFakeApprovalStore())
	if _, err := a.Approve(context.Background(), 42, "admin"); !apperr.IsNotFound(err) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}

func TestApproveFailureLeavesPending(t *testing.T) {
	store := newFakeApprovalStore(pendingChange(1, models.KindCreate))
	store.applyErr = errors.New("catalogue write failed")
	a := NewApprovals(store)

	if _, err := a.Approve(context.Background(), 1, "admin"); err == nil {
		t.Fatal("expected the catalogue failure to propagate")
	}
	if store.changes[1].Status != models.StatusPending {
		t.Errorf("status = %q, a failed apply must leave the entry pending", store.changes[1].Status)
	}

	// Once the failure clears, the same entry can still be approved
	store.applyErr = nil
	if _, err := a.Approve(context.Background(), 1, "admin"); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
}

func TestRejectRecordsNoteWithoutApply(t *testing.T) {
	store := newFakeApprovalStore(pendingChange(3, models.KindDelete))
	a := NewApprovals(store)

	change, err := a.Reject(context.Background(), 3, "admin", "duplicate entry")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if change.Status != models.StatusRejected {
		t.Errorf("status = %q, want rejected", change.Status)
	}
	if change.ReviewNote != "duplicate entry" {
		t.Errorf("note = %q, want duplicate entry", change.ReviewNote)
	}
	if change.ReviewedAt == nil {
		t.Error("rejection must stamp the review time")
	}
	if len(store.applied) != 0 {
		t.Error("reject must not mutate the catalogue")
	}

	if _, err := a.Reject(context.Background(), 3, "admin", ""); !apperr.IsInvalidState(err) {
		t.Errorf("re-reject error = %v, want InvalidStateError", err)
	}
}
