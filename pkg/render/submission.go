package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken constructs a hidden field carrying token under name (for example
// "_csrf").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// WithHidden returns a copy of options with fields merged into Hidden. Later
// fields win on name collisions and empty names are dropped.
func (o RenderOptions) WithHidden(fields ...HiddenField) RenderOptions {
	merged := make(map[string]string, len(o.Hidden)+len(fields))
	for name, value := range o.Hidden {
		if name = strings.TrimSpace(name); name != "" {
			merged[name] = value
		}
	}
	for _, field := range fields {
		if field.Name != "" {
			merged[field.Name] = field.Value
		}
	}
	o.Hidden = merged
	return o
}

// HiddenFields returns the hidden inputs sorted by name for deterministic
// output.
func (o RenderOptions) HiddenFields() []HiddenField {
	if len(o.Hidden) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(o.Hidden))
	for name, value := range o.Hidden {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
