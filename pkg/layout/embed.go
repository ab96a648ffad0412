package layout

import (
	"embed"
	"io/fs"
)

//go:embed layouts/*
var embeddedLayouts embed.FS

// EmbeddedFS returns the bundled sample layouts. Callers may pass this
// filesystem to LoadFS to get a working store without configuration.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedLayouts, "layouts")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}
