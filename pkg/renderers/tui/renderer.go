// Package tui fills a document by prompting for every field of a plan in a
// terminal session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/validation"
)

// Name is the registry name of the TUI renderer.
const Name = "tui"

// DateLayout is the accepted format for date answers.
const DateLayout = "2006-01-02"

const skipOption = "(skip)"

// Renderer implements render.Renderer for terminal-driven sessions. Render
// returns the edited document rather than markup.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	validator         validation.Validator
	maxPasses         int
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		maxPasses:    3,
		theme:        Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every field in plan, starting from options.Document,
// and returns the edited document. Each answer is coerced by field type and
// written through render.EditField.
func (r *Renderer) Render(ctx context.Context, plan render.Plan, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if options.Translator != nil {
		plan = render.Localize(plan, options.Locale, options.Translator, nil)
	}

	doc, err := r.promptPlan(ctx, plan, options.Document, nil)
	if err != nil {
		return nil, err
	}

	if r.validator != nil {
		if len(options.Layout.Fields) == 0 {
			return nil, ErrNoLayout
		}
		for pass := 0; pass < r.maxPasses; pass++ {
			findings := blocking(r.validator.Validate(options.Layout, doc))
			if len(findings) == 0 {
				break
			}
			rebuilt := render.Build(options.Layout, doc, options.Sections, findings)
			if options.Translator != nil {
				rebuilt = render.Localize(rebuilt, options.Locale, options.Translator, nil)
			}
			doc, err = r.promptPlan(ctx, rebuilt, doc, func(entry render.FieldPlan) bool {
				return entry.HasError()
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if r.submitTransformer != nil {
		doc, err = r.submitTransformer(doc)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(doc)
}

// promptPlan prompts each distinct field once, in render order. keep limits
// prompting to matching entries.
func (r *Renderer) promptPlan(ctx context.Context, plan render.Plan, doc model.Document, keep func(render.FieldPlan) bool) (model.Document, error) {
	seen := make(map[string]struct{})
	for _, entry := range plan.Fields() {
		if _, dup := seen[entry.Field.ID]; dup {
			continue
		}
		seen[entry.Field.ID] = struct{}{}
		if keep != nil && !keep(entry) {
			continue
		}

		if entry.Error != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, displayLabel(entry.Field), entry.Error.Message))
		}
		raw, answered, err := r.promptField(ctx, entry)
		if err != nil {
			return nil, err
		}
		if answered {
			doc = render.EditField(doc, entry.Field, raw)
		}
	}
	return doc, nil
}

func (r *Renderer) promptField(ctx context.Context, entry render.FieldPlan) (any, bool, error) {
	field := entry.Field
	switch model.ParseFieldType(string(field.Type)) {
	case model.FieldTypeBoolean:
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: displayLabel(field),
			Default: truthy(entry.Value),
			Help:    field.HelperText,
		})
		return answer, err == nil, err
	case model.FieldTypeSelect:
		return r.promptSelect(ctx, entry)
	case model.FieldTypeTextarea:
		return r.promptText(ctx, entry, true, nil)
	case model.FieldTypeNumber:
		return r.promptText(ctx, entry, false, numberCheck(field))
	case model.FieldTypeDate:
		return r.promptText(ctx, entry, false, dateCheck)
	default:
		return r.promptText(ctx, entry, false, nil)
	}
}

// promptText loops until the answer passes check. Blank answers to optional
// fields leave the document unchanged.
func (r *Renderer) promptText(ctx context.Context, entry render.FieldPlan, multiline bool, check func(string) error) (any, bool, error) {
	field := entry.Field
	label := displayLabel(field)
	current := formatValue(entry.Value)

	for {
		var (
			response string
			err      error
		)
		if multiline {
			response, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: field.HelperText})
		} else {
			response, err = r.driver.Input(ctx, InputConfig{Message: label, Default: current, Help: field.HelperText})
		}
		if err != nil {
			return nil, false, err
		}

		if strings.TrimSpace(response) == "" {
			if field.Required {
				r.info(ctx, fmt.Sprintf("Invalid %s: required", label))
				continue
			}
			return nil, false, nil
		}
		if check != nil {
			if err := check(response); err != nil {
				r.info(ctx, fmt.Sprintf("Invalid %s: %v", label, err))
				continue
			}
		}
		return response, true, nil
	}
}

func (r *Renderer) promptSelect(ctx context.Context, entry render.FieldPlan) (any, bool, error) {
	field := entry.Field
	if len(field.Options) == 0 {
		return r.promptText(ctx, entry, false, nil)
	}

	labels := make([]string, 0, len(field.Options)+1)
	values := make([]string, 0, len(field.Options)+1)
	if !field.Required {
		labels = append(labels, skipOption)
		values = append(values, "")
	}
	current := formatValue(entry.Value)
	defaultIdx := -1
	for _, option := range field.Options {
		if option.Value == current {
			defaultIdx = len(values)
		}
		label := option.Label
		if label == "" {
			label = option.Value
		}
		labels = append(labels, label)
		values = append(values, option.Value)
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      labels,
			DefaultIndex: defaultIdx,
			Help:         field.HelperText,
		})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(values) {
			r.info(ctx, fmt.Sprintf("Invalid %s selection", displayLabel(field)))
			continue
		}
		if values[idx] == "" {
			return nil, false, nil
		}
		return values[idx], true, nil
	}
}

func (r *Renderer) info(ctx context.Context, msg string) {
	_ = r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func numberCheck(field model.Field) func(string) error {
	return func(raw string) error {
		value, ok := model.ParseNumber(raw)
		if !ok {
			return errors.New("not a number")
		}
		if field.Validation == nil {
			return nil
		}
		if lo := field.Validation.Min; lo != nil && value < *lo {
			return fmt.Errorf("min %v", *lo)
		}
		if hi := field.Validation.Max; hi != nil && value > *hi {
			return fmt.Errorf("max %v", *hi)
		}
		return nil
	}
}

func dateCheck(raw string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(raw)); err != nil {
		return fmt.Errorf("expected %s", DateLayout)
	}
	return nil
}

// blocking keeps error-severity findings; warnings and infos never trigger
// a re-prompt.
func blocking(findings []model.Finding) []model.Finding {
	var out []model.Finding
	for _, finding := range findings {
		if model.ParseSeverity(string(finding.Severity)) == model.SeverityError {
			out = append(out, finding)
		}
	}
	return out
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
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

func (r *Renderer) serialize(doc model.Document) ([]byte, error) {
	if doc == nil {
		doc = model.Document{}
	}
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(doc)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(doc)), nil
	default:
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("tui: encode document: %w", err)
		}
		return data, nil
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(joinKey(prefix, key), val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", formatValue(val))
		}
	default:
		out.Set(prefix, formatValue(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			writePretty(b, joinKey(prefix, key), v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, formatValue(v))
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
