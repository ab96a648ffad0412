package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formengine/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetText       = "text"
	WidgetTextarea   = "textarea"
	WidgetNumber     = "number"
	WidgetDatePicker = "date-picker"
	WidgetCheckbox   = "checkbox"
	WidgetSelect     = "select"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit hints or registered
// matchers. Higher priority wins; ties fall back to registration order. An
// empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. Field.Widget is honoured
// before any matcher runs.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := strings.TrimSpace(field.Widget); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Annotate returns a copy of layout with Field.Widget filled for every field
// the registry resolves. Existing hints are kept.
func (r *Registry) Annotate(layout model.Layout) model.Layout {
	if len(layout.Fields) == 0 {
		return layout
	}
	fields := make([]model.Field, len(layout.Fields))
	for idx, field := range layout.Fields {
		if widget, ok := r.Resolve(field); ok {
			field.Widget = widget
		}
		fields[idx] = field
	}
	layout.Fields = fields
	return layout
}

func isType(fieldType model.FieldType) Matcher {
	return func(field model.Field) bool {
		return model.ParseFieldType(string(field.Type)) == fieldType
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetSelect, 90, func(field model.Field) bool {
		return model.ParseFieldType(string(field.Type)) == model.FieldTypeSelect || len(field.Options) > 0
	})
	r.Register(WidgetCheckbox, 80, isType(model.FieldTypeBoolean))
	r.Register(WidgetDatePicker, 70, isType(model.FieldTypeDate))
	r.Register(WidgetNumber, 60, isType(model.FieldTypeNumber))
	r.Register(WidgetTextarea, 50, isType(model.FieldTypeTextarea))
	r.Register(WidgetText, 0, func(model.Field) bool { return true })
}
