package model

// Section returns the section with the supplied id.
func (l Layout) Section(id string) (Section, bool) {
	for _, section := range l.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

// Field returns the field with the supplied id.
func (l Layout) Field(id string) (Field, bool) {
	for _, field := range l.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// Normalize returns a copy of the layout with enumerations parsed into their
// canonical values. Slices are copied so the result can be mutated freely.
func (l Layout) Normalize() Layout {
	out := l
	if len(l.Sections) > 0 {
		out.Sections = make([]Section, len(l.Sections))
		for idx, section := range l.Sections {
			section.Category = ParseSectionCategory(string(section.Category))
			out.Sections[idx] = section
		}
	}
	if len(l.Fields) > 0 {
		out.Fields = make([]Field, len(l.Fields))
		for idx, field := range l.Fields {
			field.Type = ParseFieldType(string(field.Type))
			if len(field.Options) > 0 {
				field.Options = append([]Option(nil), field.Options...)
			}
			out.Fields[idx] = field
		}
	}
	return out
}
