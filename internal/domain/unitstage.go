package domain

import (
	"strings"
	"time"
)

// UnitStage is the per-unit occurrence of a template stage. StageID is a weak
// reference: the instance outlives renames and archiving of its stage.
type UnitStage struct {
	ID         string
	UnitID     string
	StageID    string
	Status     Status
	CustomName *string
	OrderIndex int
	StartedAt  *time.Time
	FinishedAt *time.Time
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName resolves the instance-local override before the template name.
func (us *UnitStage) DisplayName(templateName string) string {
	if us.CustomName != nil && strings.TrimSpace(*us.CustomName) != "" {
		return *us.CustomName
	}
	return CoalesceStr(templateName, shortID(us.StageID))
}

// Transition applies a status change and stamps the first entry into
// in_progress and done. It reports whether anything changed.
func (us *UnitStage) Transition(to Status, now time.Time) bool {
	to = NormalizeStatus(string(to))
	if us.Status == to {
		return false
	}
	us.Status = to
	switch to {
	case StatusInProgress:
		if us.StartedAt == nil {
			us.StartedAt = &now
		}
	case StatusDone:
		if us.FinishedAt == nil {
			us.FinishedAt = &now
		}
	}
	us.UpdatedAt = now
	return true
}

// Snapshot is the audit representation of the mutable instance fields.
func (us *UnitStage) Snapshot() map[string]any {
	return map[string]any{
		"status": string(us.Status),
		"notes":  us.Notes,
	}
}
