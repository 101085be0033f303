package pages

import (
	"embed"
	"io/fs"
)

//go:embed templates
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the built-in demo template corpus so callers can
// try the engine without authoring their own tree. The layout matches what
// store.NewFSStore expects: <kind>/<templateId>/<variant>.html.
func EmbeddedTemplates() fs.FS {
	fsys, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return fsys
}
