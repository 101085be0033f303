package render

import (
	"fmt"
	"strings"

	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// RenderError reports a hard render failure. In kit mode a missing required
// field populates Missing; markers still unresolved after the brand-token
// pass populate Unresolved. Either way the output would be an incomplete
// deliverable, so no HTML is returned.
type RenderError struct {
	Ref        template.Ref
	Mode       Mode
	Missing    []string
	Unresolved []string
}

func (e *RenderError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required fields [%s]", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unresolved) > 0 {
		parts = append(parts, fmt.Sprintf("unresolved markers %s", strings.Join(e.Unresolved, ", ")))
	}
	if len(parts) == 0 {
		parts = append(parts, "render failed")
	}
	return fmt.Sprintf("render: %s in %s mode: %s", e.Ref, e.Mode, strings.Join(parts, "; "))
}
