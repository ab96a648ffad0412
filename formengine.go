// Package formengine renders documents through section/field layouts. It
// re-exports the most common entry points so callers can start without
// importing the sub-packages.
package formengine

import (
	"context"
	"io/fs"
	"os"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/validation"
)

type (
	// Layout is a form definition: ordered sections and fields.
	Layout = model.Layout
	// Document is the record a layout is rendered against.
	Document = model.Document
	// Finding is a validation message keyed by field path.
	Finding = model.Finding
	// Plan is a resolved layout ready for a renderer.
	Plan = render.Plan
	// RenderOptions describes per-request presentation data.
	RenderOptions = render.RenderOptions
	// Request describes one render through the orchestrator.
	Request = orchestrator.Request
	// EditRequest describes a single field edit.
	EditRequest = orchestrator.EditRequest
)

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Render resolves layout against document and returns the plan. An empty
// selection renders every section.
func Render(layout Layout, document Document, sections []string, findings []Finding) Plan {
	return render.Build(layout, document, sections, findings)
}

// ApplyEdit writes value at the field's path and returns the new document.
// The input document is not modified.
func ApplyEdit(document Document, field model.Field, value any) Document {
	return render.ApplyEdit(document, field, value)
}

// Validate runs the built-in validator.
func Validate(layout Layout, document Document) []Finding {
	return validation.Validate(layout, document)
}

// LoadLayouts parses the layout files in dir into a store.
func LoadLayouts(dir string) (*layout.Store, error) {
	return layout.LoadFS(dirFS(dir))
}

// Generate renders the stored layout id with the named renderer ("html" when
// empty) using a default orchestrator.
func Generate(ctx context.Context, layoutID string, document Document, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		LayoutID: layoutID,
		Document: document,
		Renderer: rendererName,
	})
}

func dirFS(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	return os.DirFS(dir)
}
