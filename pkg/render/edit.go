package render

import (
	"github.com/goliatone/go-formengine/pkg/docpath"
	"github.com/goliatone/go-formengine/pkg/model"
)

// ApplyEdit returns a new document with value written at the field's path.
// The value is stored as given; callers coerce it first (see Coerce) and run
// validation afterwards.
func ApplyEdit(document model.Document, field model.Field, value any) model.Document {
	return docpath.Set(document, field.Path(), value)
}

// EditField coerces raw for the field's type and applies it.
func EditField(document model.Document, field model.Field, raw any) model.Document {
	return ApplyEdit(document, field, Coerce(field, raw))
}

// ApplySubmission writes form-encoded values, keyed by field path, into
// document for every field visible in plan. Boolean fields missing from
// values are stored as false, matching how browsers omit unchecked boxes.
// Other missing fields keep their stored value.
func ApplySubmission(document model.Document, plan Plan, values map[string][]string) model.Document {
	seen := make(map[string]struct{})
	for _, entry := range plan.Fields() {
		field := entry.Field
		if _, dup := seen[field.ID]; dup {
			continue
		}
		seen[field.ID] = struct{}{}

		submitted, ok := values[field.Path()]
		switch {
		case ok && len(submitted) > 0:
			document = EditField(document, field, submitted[len(submitted)-1])
		case model.ParseFieldType(string(field.Type)) == model.FieldTypeBoolean:
			document = ApplyEdit(document, field, false)
		}
	}
	return document
}
