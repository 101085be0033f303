package template

import (
	"fmt"
	"strings"
)

// Kind is the top-level template category. The corpus ships lead-capture
// pages and sales ("vente") pages.
type Kind string

const (
	KindCapture Kind = "capture"
	KindVente   Kind = "vente"
)

// ParseKind validates a raw kind string coming from CLI flags or file paths.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.TrimSpace(raw)) {
	case KindCapture:
		return KindCapture, nil
	case KindVente:
		return KindVente, nil
	}
	return "", fmt.Errorf("template: unknown kind %q", raw)
}

// Variant identifies which document of a template is addressed. Layout is the
// authoring/preview document; Kit is the export-grade document and may carry
// additional structural conditionals.
type Variant string

const (
	VariantLayout Variant = "layout"
	VariantKit    Variant = "kit"
)

// ParseVariant validates a raw variant string.
func ParseVariant(raw string) (Variant, error) {
	switch Variant(strings.TrimSpace(raw)) {
	case VariantLayout:
		return VariantLayout, nil
	case VariantKit:
		return VariantKit, nil
	}
	return "", fmt.Errorf("template: unknown variant %q", raw)
}

// Ref addresses one template document inside a store.
type Ref struct {
	Kind       Kind
	TemplateID string
	Variant    Variant
}

// String renders the ref in the <kind>/<id>/<variant> form used by the
// on-disk layout and by error messages.
func (r Ref) String() string {
	return string(r.Kind) + "/" + r.TemplateID + "/" + string(r.Variant)
}

// Document is an immutable template text blob. Stores hand out the same
// Document value for every read of a ref; callers must not mutate Text.
type Document struct {
	Ref  Ref
	Text string
}

// Store resolves template documents by ref. Implementations are read-only;
// documents are deployment artifacts and never change at runtime.
type Store interface {
	// Resolve returns the document for ref, or a *NotFoundError when the
	// kind, template id, or variant does not exist.
	Resolve(ref Ref) (Document, error)

	// List enumerates every (kind, templateId) pair present in the store,
	// in lexical order. Variants are not enumerated; callers resolve the
	// variant they need.
	List() ([]Ref, error)
}
