// Package validation produces findings for a document rendered against a
// layout, and maps server error payloads back onto layout fields.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formengine/pkg/docpath"
	"github.com/goliatone/go-formengine/pkg/model"
)

// Messages used by Validate.
const (
	MessageRequired      = "Required"
	MessageNotANumber    = "Must be a number"
	MessageUnknownOption = "Not one of the allowed options"
)

// Validator produces findings for a document.
type Validator interface {
	Validate(layout model.Layout, document model.Document) []model.Finding
}

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc func(layout model.Layout, document model.Document) []model.Finding

// Validate delegates to the underlying function.
func (fn ValidatorFunc) Validate(layout model.Layout, document model.Document) []model.Finding {
	return fn(layout, document)
}

// Default is the built-in Validator backed by Validate.
var Default Validator = ValidatorFunc(Validate)

// Validate checks document against the constraints declared in layout. Only
// stored values are considered; defaults are a display concern. Findings are
// keyed by the field's effective path, section findings by section id, and
// appear in layout order.
func Validate(layout model.Layout, document model.Document) []model.Finding {
	var findings []model.Finding
	filled := make(map[string]bool, len(layout.Sections))

	for _, field := range layout.Fields {
		value, ok := docpath.Lookup(document, field.Path())
		present := ok && !blank(value)
		if present && field.SectionID != "" {
			filled[field.SectionID] = true
		}

		if !present {
			if field.Required {
				findings = append(findings, finding(field.Path(), MessageRequired, model.SeverityError))
			}
			continue
		}

		switch model.ParseFieldType(string(field.Type)) {
		case model.FieldTypeNumber:
			findings = append(findings, checkNumber(field, value)...)
		case model.FieldTypeSelect:
			if len(field.Options) > 0 && !hasOption(field.Options, value) {
				findings = append(findings, finding(field.Path(), MessageUnknownOption, model.SeverityWarning))
			}
		}
	}

	for _, section := range layout.Sections {
		if section.Required && !filled[section.ID] {
			label := section.Label
			if label == "" {
				label = section.ID
			}
			findings = append(findings, finding(section.ID,
				fmt.Sprintf("%s needs at least one value", label), model.SeverityInfo))
		}
	}
	return findings
}

func checkNumber(field model.Field, value any) []model.Finding {
	number, ok := model.ParseNumber(value)
	if !ok {
		return []model.Finding{finding(field.Path(), MessageNotANumber, model.SeverityError)}
	}
	if field.Validation == nil {
		return nil
	}
	if lo := field.Validation.Min; lo != nil && number < *lo {
		return []model.Finding{finding(field.Path(), "Must be at least "+formatNumber(*lo), model.SeverityError)}
	}
	if hi := field.Validation.Max; hi != nil && number > *hi {
		return []model.Finding{finding(field.Path(), "Must be at most "+formatNumber(*hi), model.SeverityError)}
	}
	return nil
}

func finding(path, message string, severity model.Severity) model.Finding {
	return model.Finding{Field: path, Message: message, Severity: severity}
}

func blank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func hasOption(options []model.Option, value any) bool {
	raw := fmt.Sprint(value)
	for _, option := range options {
		if option.Value == raw {
			return true
		}
	}
	return false
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
