// Package jsonplan renders a plan as JSON for API consumers and debugging.
package jsonplan

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formengine/pkg/render"
)

// Name is the registry name of the JSON renderer.
const Name = "json"

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the output using indent for each level.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string { return Name }

// ContentType reports the media type of Render output.
func (r *Renderer) ContentType() string { return "application/json" }

type payload struct {
	render.Plan
	Locale     string               `json:"locale,omitempty"`
	Hidden     []render.HiddenField `json:"hidden,omitempty"`
	FormErrors []string             `json:"formErrors,omitempty"`
}

// Render encodes the plan. Labels are localised when options carry a
// Translator.
func (r *Renderer) Render(ctx context.Context, plan render.Plan, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if options.Translator != nil {
		plan = render.Localize(plan, options.Locale, options.Translator, nil)
	}

	out := payload{
		Plan:       plan,
		Locale:     options.Locale,
		Hidden:     options.HiddenFields(),
		FormErrors: options.FormErrors,
	}

	var (
		data []byte
		err  error
	)
	if r.indent != "" {
		data, err = json.MarshalIndentWithOption(out, "", r.indent, json.DisableHTMLEscape())
	} else {
		data, err = json.MarshalWithOption(out, json.DisableHTMLEscape())
	}
	if err != nil {
		return nil, fmt.Errorf("jsonplan: encode plan: %w", err)
	}
	return data, nil
}
