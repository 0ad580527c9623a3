package domain

import "time"

// Project is a construction work site (obra). It owns an ordered stage
// template and a collection of units.
type Project struct {
	ID          string
	Name        string
	Description string
	ClientName  string
	City        string
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayName returns the project name, or a placeholder when it is blank.
func (p *Project) DisplayName() string {
	return CoalesceStr(p.Name, "(sem nome)")
}

// ShortID truncates the ID to 8 characters for display.
func (p *Project) ShortID() string {
	return shortID(p.ID)
}

func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
