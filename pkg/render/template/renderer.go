package template

import "io"

// Filter transforms a template value. param is nil when the filter is used
// without an argument.
type Filter func(input any, param any) (any, error)

// Engine renders named templates or inline template strings. Implementations
// write the result to every supplied writer in addition to returning it.
type Engine interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(content string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn Filter) error
	GlobalContext(data map[string]any) error
}
