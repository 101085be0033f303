// Package render is the runtime engine: it expands repeated sections,
// evaluates structural conditionals, substitutes scalars and brand tokens,
// and enforces the per-mode strictness rules.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BenGOaff/tipote-pages/internal/parser"
	"github.com/BenGOaff/tipote-pages/pkg/schema"
	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// Mode selects the render target. Preview feeds the in-app editor and
// degrades gracefully; Kit produces the exportable deliverable and fails hard
// on incomplete content.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeKit     Mode = "kit"
)

// ParseMode validates a raw mode string.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.TrimSpace(raw)) {
	case ModePreview:
		return ModePreview, nil
	case ModeKit:
		return ModeKit, nil
	}
	return "", fmt.Errorf("render: unknown mode %q", raw)
}

// ContentData is the value tree supplied per render call: top-level field key
// to string, []string, or []map[string]string (object list). Values decoded
// from JSON ([]any, map[string]any) are accepted too.
type ContentData map[string]any

// Prepared is a parsed document ready to render. Parsing happens once;
// documents are immutable at runtime so a Prepared value may be memoized by
// ref and shared across concurrent renders.
type Prepared struct {
	doc  template.Document
	tree *parser.Tree
}

// Prepare validates structural nesting and builds the parse tree. Malformed
// markers return a *template.SyntaxError.
func Prepare(doc template.Document) (*Prepared, error) {
	tree, err := parser.Parse(doc.Ref, doc.Text)
	if err != nil {
		return nil, err
	}
	return &Prepared{doc: doc, tree: tree}, nil
}

// Render is the one-shot convenience wrapper: parse then render.
func Render(doc template.Document, mode Mode, content ContentData, opts Options) (string, error) {
	p, err := Prepare(doc)
	if err != nil {
		return "", err
	}
	return p.Render(mode, content, opts)
}

// Render produces the final HTML for one mode and content tree. It is a pure
// function of its inputs; nothing is cached across calls.
func (p *Prepared) Render(mode Mode, content ContentData, opts Options) (string, error) {
	if mode != ModePreview && mode != ModeKit {
		return "", fmt.Errorf("render: unknown mode %q", mode)
	}

	st := &state{
		ref:     p.doc.Ref,
		mode:    mode,
		content: content,
		opts:    opts,
	}

	var out strings.Builder
	st.walk(&out, p.tree.Nodes, nil)

	if len(st.missing) > 0 {
		return "", &RenderError{Ref: p.doc.Ref, Mode: mode, Missing: st.missing}
	}

	html := out.String()
	if unresolved := leftoverMarkers(html); len(unresolved) > 0 {
		return "", &RenderError{Ref: p.doc.Ref, Mode: mode, Unresolved: unresolved}
	}
	return html, nil
}

type state struct {
	ref     template.Ref
	mode    Mode
	content ContentData
	opts    Options
	missing []string
}

// walk emits nodes into out. element is non-nil while expanding a section:
// the current string element or object element fields.
func (st *state) walk(out *strings.Builder, nodes []*parser.Node, element *sectionElement) {
	for _, n := range nodes {
		switch n.Type {
		case parser.NodeText:
			out.WriteString(n.Text)

		case parser.NodeConditional:
			if truthy(st.content[n.Key]) {
				st.walk(out, n.Children, element)
			} else {
				// A dropped block still counts against a required field.
				st.emitFallback(out, n.Key)
			}

		case parser.NodeSection:
			st.expandSection(out, n)

		case parser.NodeElement:
			if element != nil && element.isString {
				out.WriteString(st.clampItem(element.key, element.str))
			} else {
				// {{.}} against an object element is an authoring defect;
				// re-emit the marker so the leftover check reports it.
				out.WriteString("{{.}}")
			}

		case parser.NodeScalar:
			st.emitScalar(out, n, element)
		}
	}
}

type sectionElement struct {
	key      string
	isString bool
	str      string
	fields   map[string]string
}

func (st *state) expandSection(out *strings.Builder, sec *parser.Node) {
	// Absent, empty, or wrong-shaped values mean zero repetitions; that is a
	// valid state unless the field's metadata marks it required.
	elements := sectionElements(sec.Key, st.content[sec.Key])
	if len(elements) == 0 {
		st.emitFallback(out, sec.Key)
		return
	}
	for _, elem := range elements {
		st.walk(out, sec.Children, elem)
	}
}

// sectionElements normalizes the bound array. Both native Go shapes and
// JSON-decoded shapes ([]any, map[string]any) are accepted.
func sectionElements(key string, v any) []*sectionElement {
	var out []*sectionElement
	push := func(item any) {
		switch it := item.(type) {
		case string:
			out = append(out, &sectionElement{key: key, isString: true, str: it})
		case map[string]string:
			fields := make(map[string]string, len(it))
			for k, fv := range it {
				fields[k] = fv
			}
			out = append(out, &sectionElement{key: key, fields: fields})
		case map[string]any:
			fields := make(map[string]string, len(it))
			for k, fv := range it {
				if s, ok := fv.(string); ok {
					fields[k] = s
				} else if fv != nil {
					fields[k] = fmt.Sprint(fv)
				}
			}
			out = append(out, &sectionElement{key: key, fields: fields})
		}
	}

	switch arr := v.(type) {
	case []string:
		for _, s := range arr {
			push(s)
		}
	case []map[string]string:
		for _, m := range arr {
			push(m)
		}
	case []map[string]any:
		for _, m := range arr {
			push(m)
		}
	case []any:
		for _, item := range arr {
			push(item)
		}
	}
	return out
}

func (st *state) emitScalar(out *strings.Builder, n *parser.Node, element *sectionElement) {
	// Inside an object-list section, scalar markers resolve against the
	// element's own fields, never the outer content data. Markers the element
	// does not claim still reach the brand-token pass and the fallback.
	if element != nil && !element.isString {
		if v, ok := element.fields[n.Key]; ok {
			out.WriteString(st.clampNested(element.key, n.Key, v))
			return
		}
	} else if v, ok := st.content[n.Key]; ok {
		if s, ok := coerceScalar(v); ok {
			out.WriteString(st.clampScalar(n.Key, s))
			return
		}
	}

	// Unclaimed by content data: the brand-token pass resolves it.
	if tok, ok := st.opts.Tokens[n.Key]; ok {
		out.WriteString(tok)
		return
	}

	st.emitFallback(out, n.Key)
}

func (st *state) emitFallback(out *strings.Builder, key string) {
	switch st.opts.Metadata.Lookup(key).Fallback {
	case schema.FallbackRequired:
		if st.mode == ModeKit {
			st.markMissing(key)
			return
		}
		fmt.Fprintf(out, "[missing: %s]", key)
	default:
		// remove and empty both collapse to the empty string here; remove's
		// structural effect is carried by the conditional around the field.
	}
}

func (st *state) markMissing(key string) {
	for _, k := range st.missing {
		if k == key {
			return
		}
	}
	st.missing = append(st.missing, key)
}

func coerceScalar(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		if s {
			return "true", true
		}
		return "false", true
	case float64, int, int64:
		return fmt.Sprint(s), true
	}
	return "", false
}

// truthy implements the conditional test: absent, empty string, empty array,
// and false are falsy; anything else is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case []map[string]string:
		return len(t) > 0
	case []map[string]any:
		return len(t) > 0
	}
	return true
}

// Only the parseable conditional form counts as residue; an ordinary HTML
// comment such as <!-- IFRAME embed --> is literal text.
var strayConditionalRe = regexp.MustCompile(`<!--\s*(?:IF|ENDIF)\s+[A-Za-z0-9_][A-Za-z0-9_.-]*\s*-->`)

func leftoverMarkers(html string) []string {
	var out []string
	if idx := strings.Index(html, "{{"); idx >= 0 {
		out = append(out, fmt.Sprintf("%q", residueSnippet(html, idx)))
	}
	if loc := strayConditionalRe.FindStringIndex(html); loc != nil {
		out = append(out, fmt.Sprintf("%q", residueSnippet(html, loc[0])))
	}
	return out
}

func residueSnippet(html string, idx int) string {
	s := html[idx:]
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
