// Package listing filters, searches and sorts projects, units and unit
// stages for list views. Every function is pure and leaves its inputs
// untouched.
package listing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/alexanderramin/canteiro/internal/domain"
)

// Fold lower-cases s and strips diacritics, so "Concluída" and "concluida"
// compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Match reports whether the folded query is a substring of any folded field.
// An empty query matches everything.
func Match(query string, fields ...string) bool {
	q := Fold(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}

// ProjectFields are the searchable texts of a project.
func ProjectFields(p *domain.Project) []string {
	return []string{p.Name, p.Description, p.ClientName, p.City, p.Address}
}

// UnitFields are the searchable texts of a unit: its identifier, status
// label and raw status.
func UnitFields(u *domain.Unit) []string {
	st := u.EffectiveStatus()
	return []string{u.Identifier, domain.StatusLabel(st), string(st)}
}

// UnitFilter narrows a unit list. Zero values disable each criterion.
type UnitFilter struct {
	Status domain.Status
	Query  string
}

// FilterUnits returns the units matching f in their original order.
func FilterUnits(units []*domain.Unit, f UnitFilter) []*domain.Unit {
	out := make([]*domain.Unit, 0, len(units))
	for _, u := range units {
		if f.Status != "" && u.EffectiveStatus() != domain.NormalizeStatus(string(f.Status)) {
			continue
		}
		if !Match(f.Query, UnitFields(u)...) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// FilterProjects returns the projects matching query in their original order.
func FilterProjects(projects []*domain.Project, query string) []*domain.Project {
	out := make([]*domain.Project, 0, len(projects))
	for _, p := range projects {
		if Match(query, ProjectFields(p)...) {
			out = append(out, p)
		}
	}
	return out
}
