package model

import "strings"

// FieldType enumerates the editable kinds a layout field can declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeSelect   FieldType = "select"
	FieldTypeOther    FieldType = "other"
)

// ParseFieldType normalises raw into a known FieldType. Unknown values map to
// FieldTypeOther and an empty value maps to FieldTypeText.
func ParseFieldType(raw string) FieldType {
	switch FieldType(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return FieldTypeText
	case FieldTypeText:
		return FieldTypeText
	case FieldTypeTextarea:
		return FieldTypeTextarea
	case FieldTypeNumber:
		return FieldTypeNumber
	case FieldTypeDate:
		return FieldTypeDate
	case FieldTypeBoolean:
		return FieldTypeBoolean
	case FieldTypeSelect:
		return FieldTypeSelect
	default:
		return FieldTypeOther
	}
}

// SectionCategory classifies sections for section pickers.
type SectionCategory string

const (
	CategoryBasic       SectionCategory = "basic"
	CategorySpecialized SectionCategory = "specialized"
	CategoryOptional    SectionCategory = "optional"
)

// ParseSectionCategory normalises raw, falling back to CategoryBasic.
func ParseSectionCategory(raw string) SectionCategory {
	switch SectionCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case CategorySpecialized:
		return CategorySpecialized
	case CategoryOptional:
		return CategoryOptional
	default:
		return CategoryBasic
	}
}

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity normalises raw, falling back to SeverityError.
func ParseSeverity(raw string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case SeverityWarning:
		return SeverityWarning
	case SeverityInfo:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// Document is the caller-owned record a layout is rendered against. Values
// may be nested mappings addressed by dotted paths.
type Document = map[string]any

// Layout is the declarative description of which sections and fields to
// render. Fields reference sections by id rather than being nested in them.
type Layout struct {
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Sections []Section `json:"sections" yaml:"sections"`
	Fields   []Field   `json:"fields" yaml:"fields"`
}

// Section groups fields under a heading.
type Section struct {
	ID          string          `json:"id" yaml:"id"`
	Label       string          `json:"label" yaml:"label"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool            `json:"required" yaml:"required"`
	Category    SectionCategory `json:"category" yaml:"category"`
}

// Option is a single choice offered by a select field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Validation carries numeric bounds for number fields.
type Validation struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Position describes the field's footprint in a 12-column grid.
type Position struct {
	Width int `json:"width" yaml:"width"`
}

// GridColumns is the number of columns Position.Width is expressed against.
const GridColumns = 12

// Span returns the width clamped into 1..GridColumns. A nil position or an
// out-of-range width spans the full row.
func (p *Position) Span() int {
	if p == nil || p.Width < 1 || p.Width > GridColumns {
		return GridColumns
	}
	return p.Width
}

// Field describes one editable input. DataSource is a dotted path into the
// document; when empty the field id is used instead.
type Field struct {
	ID           string      `json:"id" yaml:"id"`
	SectionID    string      `json:"sectionId,omitempty" yaml:"sectionId,omitempty"`
	Type         FieldType   `json:"type" yaml:"type"`
	Label        string      `json:"label" yaml:"label"`
	Required     bool        `json:"required" yaml:"required"`
	DataSource   string      `json:"dataSource,omitempty" yaml:"dataSource,omitempty"`
	DefaultValue any         `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Placeholder  string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelperText   string      `json:"helperText,omitempty" yaml:"helperText,omitempty"`
	Options      []Option    `json:"options,omitempty" yaml:"options,omitempty"`
	Validation   *Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
	Position     *Position   `json:"position,omitempty" yaml:"position,omitempty"`
	// Widget forces a specific widget instead of the registry's choice.
	Widget string `json:"widget,omitempty" yaml:"widget,omitempty"`
}

// Path returns the dotted document path the field reads from and writes to.
func (f Field) Path() string {
	if f.DataSource != "" {
		return f.DataSource
	}
	return f.ID
}

// Finding is a single problem reported by an external validator.
type Finding struct {
	Field    string   `json:"field" yaml:"field"`
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
}
