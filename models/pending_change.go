package models

import "time"

type ChangeKind string

const (
	KindCreate ChangeKind = "create"
	KindUpdate ChangeKind = "update"
	KindDelete ChangeKind = "delete"
)

type ChangeStatus string

const (
	StatusPending  ChangeStatus = "pending"
	StatusApproved ChangeStatus = "approved"
	StatusRejected ChangeStatus = "rejected"
)

// PendingChange is a contributor proposal awaiting an admin decision. The
// ledger is append-only: entries are reviewed exactly once and never deleted.
type PendingChange struct {
	ID              int          `json:"id"`
	Kind            ChangeKind   `json:"kind"`
	MovieID         int          `json:"movie_id,omitempty"` // 0 for create
	MovieData       MoviePatch   `json:"movie_data"`
	PreviousData    *Movie       `json:"previous_data,omitempty"`
	ContributorID   int          `json:"contributor_id"`
	ContributorName string       `json:"contributor_name"`
	Status          ChangeStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	ReviewedBy      string       `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewed_at,omitempty"`
	ReviewNote      string       `json:"review_note,omitempty"`
}
