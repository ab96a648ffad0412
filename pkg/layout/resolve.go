package layout

import "github.com/goliatone/go-formengine/pkg/model"

// Resolution is the outcome of resolving a layout against a section
// selection.
type Resolution struct {
	// Sections holds the sections to render, in layout order.
	Sections []model.Section
	// FieldsBySection maps a rendered section id to its fields in layout
	// order. Fields without a SectionID are listed under every rendered
	// section; consumers that render Unassigned separately must skip them.
	FieldsBySection map[string][]model.Field
	// Unassigned holds fields without a SectionID and fields whose SectionID
	// names no section in the layout, in layout order.
	Unassigned []model.Field
}

// FieldsFor returns the field list of the rendered section id.
func (r Resolution) FieldsFor(sectionID string) []model.Field {
	return r.FieldsBySection[sectionID]
}

// Resolve computes the ordered sections to render and partitions fields into
// per-section and unassigned groups. An empty selection renders every
// section. A non-empty selection is a set filter: the result keeps layout
// order regardless of the order ids were selected in.
func Resolve(layout model.Layout, selected []string) Resolution {
	filter := selectionSet(selected)

	known := make(map[string]struct{}, len(layout.Sections))
	sections := make([]model.Section, 0, len(layout.Sections))
	for _, section := range layout.Sections {
		known[section.ID] = struct{}{}
		if filter != nil {
			if _, ok := filter[section.ID]; !ok {
				continue
			}
		}
		sections = append(sections, section)
	}

	bySection := make(map[string][]model.Field, len(sections))
	for _, section := range sections {
		fields := make([]model.Field, 0)
		for _, field := range layout.Fields {
			if field.SectionID == "" || field.SectionID == section.ID {
				fields = append(fields, field)
			}
		}
		bySection[section.ID] = fields
	}

	unassigned := make([]model.Field, 0)
	for _, field := range layout.Fields {
		if field.SectionID == "" {
			unassigned = append(unassigned, field)
			continue
		}
		if _, ok := known[field.SectionID]; !ok {
			unassigned = append(unassigned, field)
		}
	}

	return Resolution{
		Sections:        sections,
		FieldsBySection: bySection,
		Unassigned:      unassigned,
	}
}

func selectionSet(selected []string) map[string]struct{} {
	if len(selected) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		set[id] = struct{}{}
	}
	return set
}
