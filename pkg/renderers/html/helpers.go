package html

import "strings"

const idPrefix = "fe-"

// controlID derives the DOM id for a field's control. Characters outside
// [A-Za-z0-9_-] become dashes.
func controlID(fieldID string) string {
	trimmed := strings.TrimSpace(fieldID)
	if trimmed == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(idPrefix) + len(trimmed))
	b.WriteString(idPrefix)
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
