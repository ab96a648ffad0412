package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/renderers/html"
	"github.com/goliatone/go-formengine/pkg/renderers/jsonplan"
	"github.com/goliatone/go-formengine/pkg/renderers/tui"
	"github.com/goliatone/go-formengine/pkg/validation"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

const defaultRendererName = html.Name

// ErrFieldNotFound is returned by Edit when the field id is not in the layout.
var ErrFieldNotFound = errors.New("orchestrator: field not found")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithStore uses a fixed layout store.
func WithStore(store *layout.Store) Option {
	return func(o *Orchestrator) {
		if store != nil {
			o.stores = func() *layout.Store { return store }
		}
	}
}

// WithStoreProvider resolves the store on every request, which lets a
// layout.Watcher swap layouts without rebuilding the orchestrator.
func WithStoreProvider(provider func() *layout.Store) Option {
	return func(o *Orchestrator) {
		if provider != nil {
			o.stores = provider
		}
	}
}

// WithLayoutFS loads layouts from fsys instead of the embedded set.
func WithLayoutFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.layoutFS = fsys
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithValidator replaces the validator run for requests with Validate set.
func WithValidator(v validation.Validator) Option {
	return func(o *Orchestrator) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithWidgets overrides the widget registry used to annotate layouts.
func WithWidgets(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		if registry != nil {
			o.widgets = registry
		}
	}
}

// WithTransformers registers transformers applied, in order, to every
// resolved layout.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, transformers...)
	}
}

// WithBuildOptions forwards options to render.Build.
func WithBuildOptions(options ...render.BuildOption) Option {
	return func(o *Orchestrator) {
		o.buildOptions = append(o.buildOptions, options...)
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates layout lookup, validation, plan building and
// rendering. The zero configuration serves the embedded layouts through the
// HTML, JSON and TUI renderers.
type Orchestrator struct {
	stores          func() *layout.Store
	layoutFS        fs.FS
	registry        *render.Registry
	defaultRenderer string
	validator       validation.Validator
	widgets         *widgets.Registry
	transformers    []Transformer
	buildOptions    []render.BuildOption
	logger          *zap.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{defaultRenderer: defaultRendererName}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	o.applyDefaults()
	return o
}

// Request describes one render of a layout against a document.
type Request struct {
	// LayoutID selects a layout from the store. Ignored when Layout is set.
	LayoutID string
	// Layout renders an ad-hoc layout without consulting the store.
	Layout *model.Layout
	// Document is the record rendered against. It is never mutated.
	Document model.Document
	// Sections limits rendering to these section ids. Empty renders all.
	Sections []string
	// Findings come from an external validator. They take precedence over
	// findings produced when Validate is set.
	Findings []model.Finding
	// Payload is a server error payload mapped onto fields with
	// validation.FromPayload. Unmatched messages become form errors.
	Payload map[string][]string
	// Validate runs the configured validator over Document.
	Validate bool
	// Renderer names the renderer to use. Empty selects the default.
	Renderer string
	// RenderOptions carries per-request presentation data. Layout, Document
	// and Sections are filled in by the orchestrator.
	RenderOptions render.RenderOptions
}

// Result is a resolved request: the layout after transformers, the findings
// bound into the plan and the plan itself.
type Result struct {
	Layout     model.Layout
	Findings   []model.Finding
	FormErrors []string
	Plan       render.Plan
}

// Generate resolves the request and renders it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	result, err := o.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	options := req.RenderOptions
	options.Layout = result.Layout
	options.Document = req.Document
	options.Sections = req.Sections
	options.FormErrors = validation.MergeFormErrors(options.FormErrors, result.FormErrors...)

	output, err := renderer.Render(ctx, result.Plan, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render %s: %w", renderer.Name(), err)
	}
	o.logger.Debug("rendered layout",
		zap.String("layout", result.Layout.ID),
		zap.String("renderer", renderer.Name()),
		zap.Int("bytes", len(output)),
	)
	return output, nil
}

// Plan resolves the request into a plan without rendering it.
func (o *Orchestrator) Plan(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := o.initialiseErr; err != nil {
		return Result{}, err
	}

	form, err := o.resolveLayout(ctx, req.LayoutID, req.Layout)
	if err != nil {
		return Result{}, err
	}

	findings := append([]model.Finding(nil), req.Findings...)
	var formErrors []string
	if len(req.Payload) > 0 {
		bound, unbound := validation.FromPayload(form, req.Payload)
		findings = append(findings, bound...)
		formErrors = unbound
	}
	if req.Validate {
		findings = append(findings, o.validator.Validate(form, req.Document)...)
	}

	plan := render.Build(form, req.Document, req.Sections, findings, o.buildOptions...)
	o.logger.Debug("built plan",
		zap.String("layout", form.ID),
		zap.Strings("sections", req.Sections),
		zap.Int("findings", len(findings)),
		zap.Int("unbound", len(plan.Unbound)),
	)
	return Result{Layout: form, Findings: findings, FormErrors: formErrors, Plan: plan}, nil
}

// EditRequest describes a single field edit.
type EditRequest struct {
	LayoutID string
	Layout   *model.Layout
	Document model.Document
	FieldID  string
	Value    any
	// Raw stores Value as given instead of coercing it by field type.
	Raw bool
}

// Edit applies one edit and returns the new document. The input document is
// not mutated.
func (o *Orchestrator) Edit(ctx context.Context, req EditRequest) (model.Document, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	form, err := o.resolveLayout(ctx, req.LayoutID, req.Layout)
	if err != nil {
		return nil, err
	}
	field, ok := form.Field(req.FieldID)
	if !ok {
		return nil, fmt.Errorf("%w: %q in layout %q", ErrFieldNotFound, req.FieldID, form.ID)
	}

	o.logger.Debug("editing field", zap.String("layout", form.ID), zap.String("field", field.ID), zap.String("path", field.Path()))
	if req.Raw {
		return render.ApplyEdit(req.Document, field, req.Value), nil
	}
	return render.EditField(req.Document, field, req.Value), nil
}

// Submit applies a form submission for the sections in req and returns the
// new document together with the plan re-built against it, so callers can
// re-render with fresh findings.
func (o *Orchestrator) Submit(ctx context.Context, req Request, values map[string][]string) (model.Document, Result, error) {
	before, err := o.Plan(ctx, Request{LayoutID: req.LayoutID, Layout: req.Layout, Document: req.Document, Sections: req.Sections})
	if err != nil {
		return nil, Result{}, err
	}
	doc := render.ApplySubmission(req.Document, before.Plan, values)

	after := req
	after.Document = doc
	result, err := o.Plan(ctx, after)
	if err != nil {
		return nil, Result{}, err
	}
	return doc, result, nil
}

// Layouts lists the ids available in the store.
func (o *Orchestrator) Layouts() []string {
	if o.stores == nil {
		return nil
	}
	store := o.stores()
	if store == nil {
		return nil
	}
	return store.IDs()
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

func (o *Orchestrator) resolveLayout(ctx context.Context, id string, inline *model.Layout) (model.Layout, error) {
	var form model.Layout
	switch {
	case inline != nil:
		form = inline.Normalize()
	case id == "":
		return model.Layout{}, errors.New("orchestrator: layout id or layout is required")
	default:
		store := o.stores()
		if store == nil {
			return model.Layout{}, errors.New("orchestrator: layout store is nil")
		}
		found, err := store.Lookup(id)
		if err != nil {
			return model.Layout{}, fmt.Errorf("orchestrator: %w", err)
		}
		form = found
	}

	for _, transformer := range o.transformers {
		if transformer == nil {
			continue
		}
		if err := transformer.Transform(ctx, &form); err != nil {
			return model.Layout{}, fmt.Errorf("orchestrator: transform layout %q: %w", form.ID, err)
		}
	}
	return o.widgets.Annotate(form), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	renderer, err := o.registry.Resolve(name, o.defaultRenderer)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.validator == nil {
		o.validator = validation.Default
	}
	if o.widgets == nil {
		o.widgets = widgets.NewRegistry()
	}
	if o.stores == nil {
		fsys := o.layoutFS
		if fsys == nil {
			fsys = layout.EmbeddedFS()
		}
		store, err := layout.LoadFS(fsys)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load layouts: %w", err)
		}
		o.stores = func() *layout.Store { return store }
	}
	if o.registry == nil {
		o.registry = render.NewRegistry(jsonplan.New(), tui.New())
		renderer, err := html.New(html.WithWidgets(o.widgets))
		if err != nil {
			o.initialiseErr = errors.Join(o.initialiseErr, fmt.Errorf("orchestrator: default renderer: %w", err))
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
