package listing

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/alexanderramin/canteiro/internal/domain"
)

// SortKey selects a list ordering.
type SortKey string

const (
	SortIdentifierAsc  SortKey = "identifier_asc"
	SortIdentifierDesc SortKey = "identifier_desc"
	SortProgressAsc    SortKey = "progress_asc"
	SortProgressDesc   SortKey = "progress_desc"
	SortStatus         SortKey = "status"
	SortCreatedAsc     SortKey = "created_asc"
	SortCreatedDesc    SortKey = "created_desc"
	SortName           SortKey = "name"
)

// SortKeys lists every accepted key.
var SortKeys = []SortKey{
	SortIdentifierAsc, SortIdentifierDesc,
	SortProgressAsc, SortProgressDesc,
	SortStatus, SortCreatedAsc, SortCreatedDesc, SortName,
}

// ParseSortKey accepts any key in SortKeys; blank means identifier_asc.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortIdentifierAsc, nil
	}
	for _, k := range SortKeys {
		if SortKey(s) == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// statusRank puts work in progress first, then pending, then done.
var statusRank = map[domain.Status]int{
	domain.StatusInProgress: 0,
	domain.StatusPending:    1,
	domain.StatusDone:       2,
}

// StatusRank returns the attention rank of s.
func StatusRank(s domain.Status) int {
	return statusRank[domain.NormalizeStatus(string(s))]
}

// newCollator builds a pt-BR collator comparing digit runs numerically.
// Collators are not safe for concurrent use, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.BrazilianPortuguese, collate.Numeric, collate.IgnoreCase)
}

// NaturalCompare orders strings with embedded numbers by value ("9" < "10").
func NaturalCompare(a, b string) int {
	return newCollator().CompareString(a, b)
}

// SortUnits returns a sorted copy of units. Ties break on identifier
// ascending (natural order). Unknown keys sort by identifier.
func SortUnits(units []*domain.Unit, key SortKey) []*domain.Unit {
	out := append([]*domain.Unit(nil), units...)
	c := newCollator()
	byIdentifier := func(a, b *domain.Unit) int { return c.CompareString(a.Identifier, b.Identifier) }

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var cmp int
		switch key {
		case SortIdentifierDesc:
			return byIdentifier(a, b) > 0
		case SortProgressAsc:
			cmp = a.Progress - b.Progress
		case SortProgressDesc:
			cmp = b.Progress - a.Progress
		case SortStatus:
			cmp = StatusRank(a.Status) - StatusRank(b.Status)
		case SortCreatedAsc:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		case SortCreatedDesc:
			cmp = b.CreatedAt.Compare(a.CreatedAt)
		}
		if cmp != 0 {
			return cmp < 0
		}
		return byIdentifier(a, b) < 0
	})
	return out
}

// SortProjects returns a sorted copy of projects. Progress keys read
// averages from progress, keyed by project ID; missing entries count as 0.
// Ties break on name ascending.
func SortProjects(projects []*domain.Project, key SortKey, progress map[string]float64) []*domain.Project {
	out := append([]*domain.Project(nil), projects...)
	c := newCollator()
	byName := func(a, b *domain.Project) int { return c.CompareString(a.Name, b.Name) }

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var cmp int
		switch key {
		case SortIdentifierDesc:
			return byName(a, b) > 0
		case SortProgressAsc:
			cmp = compareFloat(progress[a.ID], progress[b.ID])
		case SortProgressDesc:
			cmp = compareFloat(progress[b.ID], progress[a.ID])
		case SortCreatedAsc:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		case SortCreatedDesc:
			cmp = b.CreatedAt.Compare(a.CreatedAt)
		}
		if cmp != 0 {
			return cmp < 0
		}
		return byName(a, b) < 0
	})
	return out
}

// Instance pairs a unit stage with the name it is displayed under.
type Instance struct {
	*domain.UnitStage
	Name string
}

// SortInstances returns a copy ordered by instance order, then display name.
func SortInstances(instances []Instance) []Instance {
	out := append([]Instance(nil), instances...)
	c := newCollator()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
