package render

import (
	"github.com/goliatone/go-formengine/pkg/docpath"
	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/model"
)

// Plan is the per-render view model: which sections to draw, which value
// each field shows and which finding, if any, is attached to it. Plans are
// derived data and are rebuilt on every render pass.
type Plan struct {
	Title      string        `json:"title,omitempty"`
	Sections   []SectionPlan `json:"sections"`
	Unassigned []FieldPlan   `json:"unassignedFields"`
	// Unbound lists findings that matched no field in the layout.
	Unbound []model.Finding `json:"unboundFindings,omitempty"`
}

// SectionPlan holds a section and its resolved fields.
type SectionPlan struct {
	Section model.Section `json:"section"`
	Fields  []FieldPlan   `json:"fields"`
}

// FieldPlan is the resolved state of a single field.
type FieldPlan struct {
	Field model.Field    `json:"field"`
	Value any            `json:"currentValue"`
	Error *model.Finding `json:"boundError,omitempty"`
}

// Path returns the document path the field is bound to.
func (f FieldPlan) Path() string {
	return f.Field.Path()
}

// HasError reports whether a finding is bound to the field.
func (f FieldPlan) HasError() bool {
	return f.Error != nil
}

// Fields returns every field plan in render order: section fields first,
// then unassigned fields. Duplicates are kept when the plan was built with
// WithUnassignedInSections.
func (p Plan) Fields() []FieldPlan {
	var out []FieldPlan
	for _, section := range p.Sections {
		out = append(out, section.Fields...)
	}
	return append(out, p.Unassigned...)
}

// Field returns the first plan entry for the field id.
func (p Plan) Field(id string) (FieldPlan, bool) {
	for _, entry := range p.Fields() {
		if entry.Field.ID == id {
			return entry, true
		}
	}
	return FieldPlan{}, false
}

// Section returns the section plan for id.
func (p Plan) Section(id string) (SectionPlan, bool) {
	for _, section := range p.Sections {
		if section.Section.ID == id {
			return section, true
		}
	}
	return SectionPlan{}, false
}

// BuildOption tweaks how a plan is assembled.
type BuildOption func(*buildConfig)

type buildConfig struct {
	unassignedInSections bool
}

// WithUnassignedInSections keeps fields without a section id inside every
// section's field list, in addition to the unassigned group. The default
// renders them once, in the unassigned group only.
func WithUnassignedInSections() BuildOption {
	return func(cfg *buildConfig) {
		cfg.unassignedInSections = true
	}
}

// Build resolves layout against document for the selected sections and
// binds findings to fields. It has no side effects; identical inputs give
// identical plans.
func Build(form model.Layout, document model.Document, selected []string, findings []model.Finding, options ...BuildOption) Plan {
	var cfg buildConfig
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	resolution := layout.Resolve(form, selected)

	plan := Plan{
		Title:      form.Title,
		Sections:   make([]SectionPlan, 0, len(resolution.Sections)),
		Unassigned: make([]FieldPlan, 0, len(resolution.Unassigned)),
		Unbound:    UnboundFindings(form, findings),
	}

	for _, section := range resolution.Sections {
		fields := resolution.FieldsFor(section.ID)
		entries := make([]FieldPlan, 0, len(fields))
		for _, field := range fields {
			if field.SectionID == "" && !cfg.unassignedInSections {
				continue
			}
			entries = append(entries, planField(field, document, findings))
		}
		plan.Sections = append(plan.Sections, SectionPlan{Section: section, Fields: entries})
	}

	for _, field := range resolution.Unassigned {
		plan.Unassigned = append(plan.Unassigned, planField(field, document, findings))
	}

	return plan
}

func planField(field model.Field, document model.Document, findings []model.Finding) FieldPlan {
	entry := FieldPlan{
		Field: field,
		Value: docpath.Get(document, field.Path(), defaultValue(field)),
	}
	if finding, ok := FindError(findings, field); ok {
		entry.Error = &finding
	}
	return entry
}

func defaultValue(field model.Field) any {
	if field.DefaultValue != nil {
		return field.DefaultValue
	}
	return ""
}
