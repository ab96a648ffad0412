package tui

import (
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/validation"
)

// OutputFormat controls how the edited document is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits one path=value line per leaf.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat maps raw onto a known format, defaulting to JSON.
func ParseOutputFormat(raw string) OutputFormat {
	switch OutputFormat(raw) {
	case OutputFormatFormURLEncoded:
		return OutputFormatFormURLEncoded
	case OutputFormatPrettyText:
		return OutputFormatPrettyText
	default:
		return OutputFormatJSON
	}
}

// Theme captures message prefixes the renderer applies to info lines.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitTransformer mutates the edited document before serialization.
type SubmitTransformer func(model.Document) (model.Document, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithStdio points the default survey driver at custom streams.
func WithStdio(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) Option {
	return func(r *Renderer) {
		r.driver = &surveyDriver{out: out, opts: []survey.AskOpt{survey.WithStdio(in, out, errOut)}}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate the document prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithValidator re-prompts fields that v reports errors for, up to
// WithMaxPasses times. Requires RenderOptions.Layout.
func WithValidator(v validation.Validator) Option {
	return func(r *Renderer) {
		r.validator = v
	}
}

// WithMaxPasses bounds the number of validation re-prompt rounds.
func WithMaxPasses(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxPasses = n
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
