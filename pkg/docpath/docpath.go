// Package docpath reads and writes values in nested documents using dotted
// paths. Reads never fail: anything that cannot be walked yields the caller's
// default. Writes are copy-on-write: only the containers along the path are
// copied, siblings keep their identity and the input document is untouched.
package docpath

import (
	"strconv"
	"strings"
)

// Separator splits a path into keys.
const Separator = "."

// Split breaks path into keys. Empty segments are kept as literal keys, so
// "a..b" addresses the key "" between "a" and "b".
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// Lookup walks document along path and reports whether the terminal key is
// present. A present key holding nil reports (nil, true).
func Lookup(document map[string]any, path string) (any, bool) {
	var current any = document
	for _, segment := range Split(path) {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, ok := sliceIndex(node, segment)
			if !ok {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Get returns the value stored at path, or def when any step of the walk is
// missing or lands on a value that is not a container.
func Get(document map[string]any, path string, def any) any {
	if value, ok := Lookup(document, path); ok {
		return value
	}
	return def
}

// Set returns a new document with value stored at path. Missing intermediate
// keys, and intermediates holding scalars, are replaced with empty mappings.
func Set(document map[string]any, path string, value any) map[string]any {
	root := copyMap(document)
	segments := Split(path)
	setIn(root, segments, value)
	return root
}

// setIn writes into container, which must already be a private copy.
func setIn(container map[string]any, segments []string, value any) {
	key := segments[0]
	if len(segments) == 1 {
		container[key] = value
		return
	}
	container[key] = setChild(container[key], segments[1:], value)
}

// setChild returns a private copy of child with the remaining segments
// written into it.
func setChild(child any, segments []string, value any) any {
	switch node := child.(type) {
	case map[string]any:
		next := copyMap(node)
		setIn(next, segments, value)
		return next
	case []any:
		if idx, ok := sliceIndex(node, segments[0]); ok {
			next := append([]any(nil), node...)
			if len(segments) == 1 {
				next[idx] = value
				return next
			}
			next[idx] = setChild(next[idx], segments[1:], value)
			return next
		}
		next := sliceToMap(node)
		setIn(next, segments, value)
		return next
	default:
		next := make(map[string]any)
		setIn(next, segments, value)
		return next
	}
}

func copyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src)+1)
	for key, value := range src {
		out[key] = value
	}
	return out
}

func sliceToMap(src []any) map[string]any {
	out := make(map[string]any, len(src)+1)
	for idx, value := range src {
		out[strconv.Itoa(idx)] = value
	}
	return out
}

func sliceIndex(node []any, segment string) (int, bool) {
	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 || idx >= len(node) {
		return 0, false
	}
	// "01" and "+1" are object keys, not indices.
	if strconv.Itoa(idx) != segment {
		return 0, false
	}
	return idx, true
}
