package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// FormTemplate is the entry template rendered for every plan.
const FormTemplate = "form.tmpl"

// TemplatesFS exposes the embedded template bundle. Callers overriding the
// markup should provide a form.tmpl at the root of their own fs.FS.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
