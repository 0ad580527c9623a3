package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ClampProgress rounds v to the nearest integer and clamps it to [0,100].
// NaN yields 0; infinities clamp to the nearest bound.
func ClampProgress(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if v <= 0 {
		return 0
	}
	if v >= 100 {
		return 100
	}
	return int(math.Round(v))
}

// ParseProgress converts textual input to a clamped progress value.
// Blank or non-numeric input yields 0.
func ParseProgress(s string) int {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return ClampProgress(v)
}

// NormalizeStatus maps raw input onto the three known statuses.
// Unknown or empty values default to pending.
func NormalizeStatus(s string) Status {
	st := Status(strings.ReplaceAll(lower(s), "-", "_"))
	if st.Valid() {
		return st
	}
	return StatusPending
}

// FormatPercent renders integral values without decimals and fractional
// values with exactly two (33.333 -> "33.33%", 50 -> "50%").
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0%"
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

var statusLabels = map[Status]string{
	StatusPending:    "Pendente",
	StatusInProgress: "Em andamento",
	StatusDone:       "Concluída",
}

// StatusLabel returns the pt-BR label shown and searched for a status.
func StatusLabel(s Status) string {
	return statusLabels[NormalizeStatus(string(s))]
}
