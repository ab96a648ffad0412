package validation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formengine/pkg/model"
)

// FromPayload maps a server error payload onto layout fields. Keys may be
// dotted paths, JSON pointers ("/body/vitals/bp") or bracketed indices;
// request wrappers such as "body" or "data" are ignored. Each message bound
// to a field becomes an error finding keyed by that field's path. Messages
// for unknown or form-level keys are returned separately, trimmed and
// de-duplicated. Keys are processed in sorted order.
func FromPayload(layout model.Layout, payload map[string][]string) ([]model.Finding, []string) {
	if len(payload) == 0 {
		return nil, nil
	}

	paths := make(map[string]string, len(layout.Fields)*2)
	for _, field := range layout.Fields {
		paths[field.Path()] = field.Path()
		if field.ID != "" {
			if _, taken := paths[field.ID]; !taken {
				paths[field.ID] = field.Path()
			}
		}
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var findings []model.Finding
	var form []string
	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		path, ok := mapErrorPath(key, paths)
		if !ok {
			form = append(form, messages...)
			continue
		}
		for _, message := range messages {
			findings = append(findings, finding(path, message, model.SeverityError))
		}
	}
	return findings, normalizeMessages(form)
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// mapErrorPath returns the field path with the most segments matched by any
// variant of raw.
func mapErrorPath(raw string, paths map[string]string) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := parsePathSegments(raw)
	if len(segments) == 0 {
		return "", false
	}

	best, bestLen := "", 0
	for _, variant := range segmentVariants(segments) {
		for end := len(variant); end > bestLen; end-- {
			if path, ok := paths[strings.Join(variant[:end], ".")]; ok {
				best, bestLen = path, end
				break
			}
		}
	}
	return best, best != ""
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for _, prefix := range []string{"#/", "$/", "$."} {
		clean = strings.TrimPrefix(clean, prefix)
	}
	clean = strings.TrimLeft(clean, "#/.$")

	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == '/' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func segmentVariants(segments []string) [][]string {
	unwrapped := dropWrapperSegments(segments)
	candidates := [][]string{
		segments,
		unwrapped,
		stripNumericSegments(segments),
		stripNumericSegments(unwrapped),
	}

	var out [][]string
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if len(candidate) == 0 {
			continue
		}
		key := strings.Join(candidate, ".")
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"document":   {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
