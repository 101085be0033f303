// Package engine wires the template store, schema store, inferencer, and
// renderer into one pipeline object. It applies sensible defaults while
// remaining open to dependency injection.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/BenGOaff/tipote-pages/pkg/infer"
	"github.com/BenGOaff/tipote-pages/pkg/render"
	"github.com/BenGOaff/tipote-pages/pkg/schema"
	"github.com/BenGOaff/tipote-pages/pkg/store"
	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// VariantPolicy maps a render mode to the template variant it loads. The
// mapping is explicit configuration, not a file-naming convention.
type VariantPolicy func(mode render.Mode) template.Variant

// DefaultVariantPolicy loads the editable layout document for previews and
// the export document for kits, with no silent fallback between them.
func DefaultVariantPolicy(mode render.Mode) template.Variant {
	if mode == render.ModeKit {
		return template.VariantKit
	}
	return template.VariantLayout
}

// MetadataProvider supplies per-field editorial policy for one template.
type MetadataProvider func(kind template.Kind, templateID string) schema.Metadata

// Option customises the engine configuration.
type Option func(*Engine)

// WithTemplates injects the template document store. Required.
func WithTemplates(s template.Store) Option {
	return func(e *Engine) { e.templates = s }
}

// WithSchemaStore injects the schema file store. Without one, renders run
// unclamped and InferAll cannot persist.
func WithSchemaStore(s *store.SchemaStore) Option {
	return func(e *Engine) { e.schemas = s }
}

// WithNamingPolicy swaps the size-hint heuristic used by batch inference.
func WithNamingPolicy(policy infer.NamingPolicy) Option {
	return func(e *Engine) { e.naming = policy }
}

// WithVariantPolicy overrides the mode-to-variant mapping.
func WithVariantPolicy(policy VariantPolicy) Option {
	return func(e *Engine) {
		if policy != nil {
			e.variants = policy
		}
	}
}

// WithMetadataProvider registers the source of per-field metadata.
func WithMetadataProvider(provider MetadataProvider) Option {
	return func(e *Engine) { e.metadata = provider }
}

// WithSanitizer applies a bluemonday policy to substituted content values.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(e *Engine) { e.sanitizer = policy }
}

// WithThemeSelector sources brand tokens from a go-theme selection; explicit
// per-request tokens still win over manifest tokens.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(e *Engine) {
		e.themeSelector = selector
		e.themeName = name
		e.themeVariant = variant
	}
}

// Engine is the request-time entry point. It holds only immutable
// configuration and lazily-populated caches of immutable values, so one
// Engine serves concurrent renders without locking beyond those caches.
type Engine struct {
	templates template.Store
	schemas   *store.SchemaStore
	naming    infer.NamingPolicy
	variants  VariantPolicy
	metadata  MetadataProvider
	sanitizer *bluemonday.Policy

	themeSelector theme.ThemeSelector
	themeName     string
	themeVariant  string

	// prepared memoizes parse trees by ref; documents are immutable at
	// runtime so entries are never invalidated.
	prepared sync.Map // template.Ref -> *render.Prepared
}

// New constructs an Engine applying the provided options.
func New(options ...Option) *Engine {
	e := &Engine{
		variants: DefaultVariantPolicy,
		naming:   infer.DefaultNamingPolicy,
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Request describes one render call.
type Request struct {
	Kind       template.Kind
	TemplateID string
	Mode       render.Mode

	// VariantID overrides the variant chosen by the engine's VariantPolicy.
	VariantID string

	Content     render.ContentData
	BrandTokens render.BrandTokens
}

// Result carries the rendered document.
type Result struct {
	HTML string
}

// Render resolves the template document and schema for the request and runs
// the substitution engine. See render.Prepared for the mode semantics.
func (e *Engine) Render(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if e.templates == nil {
		return Result{}, errors.New("engine: template store is required")
	}
	if _, err := template.ParseKind(string(req.Kind)); err != nil {
		return Result{}, err
	}

	variant := e.variants(req.Mode)
	if req.VariantID != "" {
		v, err := template.ParseVariant(req.VariantID)
		if err != nil {
			return Result{}, err
		}
		variant = v
	}

	ref := template.Ref{Kind: req.Kind, TemplateID: req.TemplateID, Variant: variant}
	prepared, err := e.prepare(ref)
	if err != nil {
		return Result{}, err
	}

	opts := render.Options{
		Tokens:    e.resolveTokens(req.BrandTokens),
		Sanitizer: e.sanitizer,
	}
	if e.metadata != nil {
		opts.Metadata = e.metadata(req.Kind, req.TemplateID)
	}
	cs, ok, err := e.loadSchema(req.Kind, req.TemplateID)
	if err != nil {
		return Result{}, err
	}
	if ok {
		opts.Schema = &cs
	}

	html, err := prepared.Render(req.Mode, req.Content, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{HTML: html}, nil
}

// InferSchema runs the inferencer over one template's layout document without
// touching the schema store.
func (e *Engine) InferSchema(kind template.Kind, templateID string) (schema.ContentSchema, error) {
	if e.templates == nil {
		return schema.ContentSchema{}, errors.New("engine: template store is required")
	}
	doc, err := e.templates.Resolve(template.Ref{Kind: kind, TemplateID: templateID, Variant: template.VariantLayout})
	if err != nil {
		return schema.ContentSchema{}, err
	}
	return infer.Infer(doc, infer.WithNamingPolicy(e.naming))
}

// ExportSchema serialises a stored (or freshly inferred) schema as an OpenAPI
// object schema for the content-generation collaborator.
func (e *Engine) ExportSchema(kind template.Kind, templateID string) ([]byte, error) {
	cs, ok, err := e.loadSchema(kind, templateID)
	if err != nil {
		return nil, err
	}
	if !ok {
		inferred, err := e.InferSchema(kind, templateID)
		if err != nil {
			return nil, err
		}
		cs = inferred
	}
	oas, err := schema.ExportOpenAPI(cs)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(oas, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("engine: encode exported schema: %w", err)
	}
	return append(out, '\n'), nil
}

func (e *Engine) prepare(ref template.Ref) (*render.Prepared, error) {
	if cached, ok := e.prepared.Load(ref); ok {
		return cached.(*render.Prepared), nil
	}
	doc, err := e.templates.Resolve(ref)
	if err != nil {
		return nil, err
	}
	prepared, err := render.Prepare(doc)
	if err != nil {
		return nil, err
	}
	actual, _ := e.prepared.LoadOrStore(ref, prepared)
	return actual.(*render.Prepared), nil
}

// loadSchema fetches the schema for clamping. A missing schema file is not a
// render failure: the schema is advisory and substitution is driven by the
// document itself. A present-but-invalid file is surfaced, never ignored.
func (e *Engine) loadSchema(kind template.Kind, templateID string) (schema.ContentSchema, bool, error) {
	if e.schemas == nil {
		return schema.ContentSchema{}, false, nil
	}
	cs, err := e.schemas.Load(kind, templateID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return schema.ContentSchema{}, false, nil
		}
		return schema.ContentSchema{}, false, err
	}
	return cs, true, nil
}

func (e *Engine) resolveTokens(explicit render.BrandTokens) render.BrandTokens {
	if e.themeSelector == nil {
		return explicit
	}
	selection, err := e.themeSelector.Select(e.themeName, e.themeVariant)
	if err != nil || selection == nil {
		return explicit
	}
	return render.TokensFromSelection(selection, explicit)
}
