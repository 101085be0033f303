package template

import "fmt"

// NotFoundError reports an unknown kind, template id, or variant.
type NotFoundError struct {
	Ref Ref
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template: document %s not found", e.Ref)
}

// SyntaxError reports mismatched or malformed markers in a document. It is
// always fatal: inference rejects the whole document and render refuses to
// produce partial output.
type SyntaxError struct {
	Ref    Ref
	Offset int
	Detail string
}

func (e *SyntaxError) Error() string {
	if e.Ref.TemplateID == "" {
		return fmt.Sprintf("template: syntax error at offset %d: %s", e.Offset, e.Detail)
	}
	return fmt.Sprintf("template: syntax error in %s at offset %d: %s", e.Ref, e.Offset, e.Detail)
}
