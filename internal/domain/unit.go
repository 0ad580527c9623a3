package domain

import "time"

// Unit is an individually tracked element of a project, typically an
// apartment identified like "301".
type Unit struct {
	ID         string
	ProjectID  string
	Identifier string
	Status     Status
	Progress   int // always within [0,100]
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EffectiveStatus returns the unit status, defaulting unknown values to pending.
func (u *Unit) EffectiveStatus() Status {
	return NormalizeStatus(string(u.Status))
}

// Started reports whether any work has been recorded on the unit.
func (u *Unit) Started() bool {
	return u.Progress > 0 || u.EffectiveStatus() != StatusPending
}

// Label returns the identifier, or a short ID when the identifier is blank.
func (u *Unit) Label() string {
	return CoalesceStr(u.Identifier, shortID(u.ID))
}
