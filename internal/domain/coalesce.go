package domain

import "strings"

// CoalesceStr returns the first non-blank string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// StringPtrOrNil returns nil for blank input, otherwise a pointer to the trimmed value.
func StringPtrOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
