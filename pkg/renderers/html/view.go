package html

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

type formView struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Action     string               `json:"action"`
	Method     string               `json:"method"`
	Hidden     []render.HiddenField `json:"hidden"`
	FormErrors []string             `json:"formErrors"`
	Unbound    []findingView        `json:"unbound"`
	Sections   []sectionView        `json:"sections"`
	Unassigned []fieldView          `json:"unassigned"`
}

type sectionView struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Category    string      `json:"category"`
	Fields      []fieldView `json:"fields"`
}

type fieldView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	ControlID   string       `json:"controlId"`
	Label       string       `json:"label"`
	Type        string       `json:"type"`
	Widget      string       `json:"widget"`
	Required    bool         `json:"required"`
	Placeholder string       `json:"placeholder"`
	HelpHTML    string       `json:"helpHtml"`
	Span        int          `json:"span"`
	Value       string       `json:"value"`
	Checked     bool         `json:"checked"`
	Min         string       `json:"min"`
	Max         string       `json:"max"`
	Options     []optionView `json:"options"`
	Error       *findingView `json:"error"`
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type findingView struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type viewBuilder struct {
	widgets *widgets.Registry
	policy  *bluemonday.Policy
}

func (b viewBuilder) form(plan render.Plan, options render.RenderOptions) formView {
	method := strings.ToLower(strings.TrimSpace(options.Method))
	if method == "" {
		method = "post"
	}
	view := formView{
		ID:         options.Layout.ID,
		Title:      plan.Title,
		Action:     options.Action,
		Method:     method,
		Hidden:     options.HiddenFields(),
		FormErrors: options.FormErrors,
		Sections:   make([]sectionView, 0, len(plan.Sections)),
		Unassigned: b.fields(plan.Unassigned),
	}
	for _, finding := range plan.Unbound {
		view.Unbound = append(view.Unbound, newFindingView(finding))
	}
	for _, section := range plan.Sections {
		view.Sections = append(view.Sections, sectionView{
			ID:          section.Section.ID,
			Label:       section.Section.Label,
			Description: sanitize(b.policy, section.Section.Description),
			Required:    section.Section.Required,
			Category:    string(section.Section.Category),
			Fields:      b.fields(section.Fields),
		})
	}
	return view
}

func (b viewBuilder) fields(entries []render.FieldPlan) []fieldView {
	out := make([]fieldView, 0, len(entries))
	for _, entry := range entries {
		out = append(out, b.field(entry))
	}
	return out
}

func (b viewBuilder) field(entry render.FieldPlan) fieldView {
	field := entry.Field
	widget, ok := b.widgets.Resolve(field)
	if !ok {
		widget = widgets.WidgetText
	}

	view := fieldView{
		ID:          field.ID,
		Name:        field.Path(),
		ControlID:   controlID(field.ID),
		Label:       displayLabel(field),
		Type:        string(model.ParseFieldType(string(field.Type))),
		Widget:      widget,
		Required:    field.Required,
		Placeholder: field.Placeholder,
		HelpHTML:    sanitize(b.policy, field.HelperText),
		Span:        field.Position.Span(),
		Value:       formatValue(entry.Value),
		Checked:     truthy(entry.Value),
	}
	if field.Validation != nil {
		view.Min = formatBound(field.Validation.Min)
		view.Max = formatBound(field.Validation.Max)
	}
	for _, option := range field.Options {
		label := option.Label
		if label == "" {
			label = option.Value
		}
		view.Options = append(view.Options, optionView{
			Value:    option.Value,
			Label:    label,
			Selected: option.Value == view.Value,
		})
	}
	if entry.Error != nil {
		finding := newFindingView(*entry.Error)
		view.Error = &finding
	}
	return view
}

func newFindingView(finding model.Finding) findingView {
	return findingView{
		Field:    finding.Field,
		Message:  finding.Message,
		Severity: string(model.ParseSeverity(string(finding.Severity))),
	}
}

func displayLabel(field model.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return field.ID
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func formatBound(bound *float64) string {
	if bound == nil {
		return ""
	}
	return strconv.FormatFloat(*bound, 'f', -1, 64)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		return false
	}
}
