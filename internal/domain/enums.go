package domain

// Status is the closed three-state lifecycle shared by units and unit stages.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Direction is a one-step move within an ordered list.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection accepts "up" or "down" in any case.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(lower(s)) {
	case DirectionUp:
		return DirectionUp, true
	case DirectionDown:
		return DirectionDown, true
	}
	return "", false
}

// LogAction names the kind of change recorded in a stage audit entry.
type LogAction string

const (
	ActionStatusChanged LogAction = "status_changed"
	ActionNotesUpdated  LogAction = "notes_updated"
	ActionPhotoAdded    LogAction = "photo_added"
	ActionPhotoDeleted  LogAction = "photo_deleted"
)

// ValidLogActions is the canonical set of accepted audit actions.
var ValidLogActions = map[LogAction]bool{
	ActionStatusChanged: true,
	ActionNotesUpdated:  true,
	ActionPhotoAdded:    true,
	ActionPhotoDeleted:  true,
}
