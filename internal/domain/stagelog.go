package domain

import "time"

// StageLog is an append-only audit entry for a unit stage. OldValue and
// NewValue hold JSON snapshots.
type StageLog struct {
	ID          string
	UnitStageID string
	UserID      string
	Action      LogAction
	OldValue    string
	NewValue    string
	CreatedAt   time.Time
}
