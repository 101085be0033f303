// Package pages is the template schema/render engine behind hosted capture
// and sales pages: it infers content schemas from hand-authored HTML
// templates and renders them with user/AI content and brand tokens.
package pages

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/BenGOaff/tipote-pages/pkg/engine"
	"github.com/BenGOaff/tipote-pages/pkg/infer"
	"github.com/BenGOaff/tipote-pages/pkg/render"
	"github.com/BenGOaff/tipote-pages/pkg/schema"
	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// Request describes one render call; re-exported for convenience.
type Request = engine.Request

// Result carries the rendered document.
type Result = engine.Result

// ContentData is the per-call content value tree.
type ContentData = render.ContentData

// BrandTokens is the per-call design-token mapping.
type BrandTokens = render.BrandTokens

const (
	ModePreview = render.ModePreview
	ModeKit     = render.ModeKit

	KindCapture = template.KindCapture
	KindVente   = template.KindVente
)

// New constructs an engine with the supplied options.
func New(options ...engine.Option) *engine.Engine {
	return engine.New(options...)
}

// WithTemplates injects the template document store.
func WithTemplates(s template.Store) engine.Option {
	return engine.WithTemplates(s)
}

// WithThemeSelector sources brand tokens from a go-theme selection.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) engine.Option {
	return engine.WithThemeSelector(selector, name, variant)
}

// RenderHTML is the simplest entry point for callers that just want HTML for
// one request against one store.
func RenderHTML(ctx context.Context, s template.Store, req Request, options ...engine.Option) (string, error) {
	opts := append([]engine.Option{engine.WithTemplates(s)}, options...)
	result, err := engine.New(opts...).Render(ctx, req)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}

// InferSchema derives the content schema for one template document.
func InferSchema(doc template.Document, options ...infer.Option) (schema.ContentSchema, error) {
	return infer.Infer(doc, options...)
}
