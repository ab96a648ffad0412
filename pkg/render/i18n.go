package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formengine/pkg/model"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when Localize
// runs without a Translator.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate delegates to the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler decides the text used when a key cannot be
// translated. fallback is the text authored in the layout.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

// TitleKey is the translation key for the layout title.
const TitleKey = "layout.title"

// Key prefixes used by SectionKey and FieldKey.
const (
	sectionKeyPrefix = "layout.section."
	fieldKeyPrefix   = "layout.field."
)

// SectionKey returns the translation key for a section attribute, e.g.
// SectionKey("vitals", "label") == "layout.section.vitals.label".
func SectionKey(sectionID, attr string) string {
	return sectionKeyPrefix + sectionID + "." + attr
}

// FieldKey returns the translation key for a field attribute, e.g.
// FieldKey("pulse", "helperText") == "layout.field.pulse.helperText".
func FieldKey(fieldID, attr string) string {
	return fieldKeyPrefix + fieldID + "." + attr
}

// Localize returns a copy of plan with its title, section and field texts
// translated through t. Keys follow TitleKey, SectionKey and FieldKey; select
// options use FieldKey(id, "option."+value). Missing translations keep the authored text
// unless onMissing says otherwise. Values and findings are left untouched.
func Localize(plan Plan, locale string, t Translator, onMissing MissingTranslationHandler) Plan {
	if onMissing == nil {
		onMissing = keepFallback
	}
	tr := func(key, fallback string) string {
		return translate(locale, key, fallback, t, onMissing)
	}

	out := plan
	if plan.Title != "" {
		out.Title = tr(TitleKey, plan.Title)
	}
	out.Sections = make([]SectionPlan, len(plan.Sections))
	for idx, section := range plan.Sections {
		s := section.Section
		s.Label = tr(SectionKey(s.ID, "label"), s.Label)
		s.Description = tr(SectionKey(s.ID, "description"), s.Description)
		out.Sections[idx] = SectionPlan{Section: s, Fields: localizeFields(section.Fields, tr)}
	}
	out.Unassigned = localizeFields(plan.Unassigned, tr)
	return out
}

func localizeFields(fields []FieldPlan, tr func(key, fallback string) string) []FieldPlan {
	if fields == nil {
		return nil
	}
	out := make([]FieldPlan, len(fields))
	for idx, entry := range fields {
		field := entry.Field
		field.Label = tr(FieldKey(field.ID, "label"), field.Label)
		field.Placeholder = tr(FieldKey(field.ID, "placeholder"), field.Placeholder)
		field.HelperText = tr(FieldKey(field.ID, "helperText"), field.HelperText)
		if len(field.Options) > 0 {
			options := make([]model.Option, len(field.Options))
			for i, option := range field.Options {
				option.Label = tr(FieldKey(field.ID, "option."+option.Value), option.Label)
				options[i] = option
			}
			field.Options = options
		}
		entry.Field = field
		out[idx] = entry
	}
	return out
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	if t == nil {
		return onMissing(locale, key, fallback, ErrMissingTranslator)
	}
	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, fallback, err)
}

func keepFallback(_, _, fallback string, _ error) string {
	return fallback
}
