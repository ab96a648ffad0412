package render

import "github.com/goliatone/go-formengine/pkg/model"

// RenderOptions carry per-request data renderers can use without changing
// how the plan was built.
type RenderOptions struct {
	// Layout is the layout the plan was built from. The terminal renderer
	// rebuilds the plan from it between validation passes.
	Layout model.Layout
	// Document is the document the plan was built against.
	Document model.Document
	// Sections repeats the section selection used for the plan.
	Sections []string
	// Action and Method describe where an HTML form submits to.
	Action string
	Method string
	// Hidden carries hidden inputs such as CSRF tokens, keyed by name.
	Hidden map[string]string
	// Locale and Translator localise labels before rendering; see Localize.
	Locale     string
	Translator Translator
	// FormErrors lists messages not tied to any field.
	FormErrors []string
}
