// Package html renders plans as HTML forms through pongo2 templates.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formengine/pkg/render"
	rendertemplate "github.com/goliatone/go-formengine/pkg/render/template"
	"github.com/goliatone/go-formengine/pkg/render/template/pongo"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	engine     rendertemplate.Engine
	widgets    *widgets.Registry
	policy     *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithEngine injects a custom template engine. The engine must provide
// FormTemplate.
func WithEngine(engine rendertemplate.Engine) Option {
	return func(cfg *config) {
		if engine != nil {
			cfg.engine = engine
		}
	}
}

// WithWidgets overrides the widget registry used to pick controls.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithPolicy overrides the sanitiser applied to helper texts and section
// descriptions.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	templates rendertemplate.Engine
	views     viewBuilder
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}
	if cfg.policy == nil {
		cfg.policy = defaultPolicy()
	}

	engine := cfg.engine
	if engine == nil {
		built, err := pongo.New(pongo.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure templates: %w", err)
		}
		engine = built
	}

	return &Renderer{
		templates: engine,
		views:     viewBuilder{widgets: cfg.widgets, policy: cfg.policy},
	}, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string { return Name }

// ContentType reports the media type of Render output.
func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render executes FormTemplate for plan.
func (r *Renderer) Render(ctx context.Context, plan render.Plan, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template engine is nil")
	}
	if options.Translator != nil {
		plan = render.Localize(plan, options.Locale, options.Translator, nil)
	}

	result, err := r.templates.RenderTemplate(FormTemplate, r.views.form(plan, options))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}
