// Package infer derives a content schema from a template document by
// pattern-matching its marker syntax. It has no semantic understanding of the
// surrounding HTML and performs no I/O; persisting the result is the
// caller's concern.
package infer

import (
	"fmt"

	"github.com/BenGOaff/tipote-pages/internal/parser"
	"github.com/BenGOaff/tipote-pages/pkg/schema"
	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// Option customises an inference run.
type Option func(*config)

type config struct {
	policy NamingPolicy
}

// WithNamingPolicy swaps the size-hint heuristic. The policy must stay pure
// so repeated runs emit byte-identical schemas.
func WithNamingPolicy(policy NamingPolicy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Infer derives the content schema for one template document. Fields are
// emitted in first-seen document order: sections claim their key and the
// scalar keys inside their body; remaining scalar and conditional keys become
// top-level scalars. Malformed nesting rejects the whole document with a
// *template.SyntaxError.
func Infer(doc template.Document, options ...Option) (schema.ContentSchema, error) {
	cfg := config{policy: DefaultNamingPolicy}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	tree, err := parser.Parse(doc.Ref, doc.Text)
	if err != nil {
		return schema.ContentSchema{}, err
	}

	out := schema.ContentSchema{
		Kind:       doc.Ref.Kind,
		TemplateID: doc.Ref.TemplateID,
	}

	// Sections are classified first so a conditional or scalar marker that
	// shares a section's key resolves to the section's shape, wherever it
	// appears in the document.
	sections := make(map[string]schema.FieldSpec)
	var collect func(nodes []*parser.Node) error
	collect = func(nodes []*parser.Node) error {
		for _, n := range nodes {
			switch n.Type {
			case parser.NodeSection:
				spec, err := sectionSpec(cfg.policy, doc.Ref, n)
				if err != nil {
					return err
				}
				sections[n.Key] = spec
			case parser.NodeConditional:
				if err := collect(n.Children); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := collect(tree.Nodes); err != nil {
		return schema.ContentSchema{}, err
	}

	seen := make(map[string]struct{})
	add := func(key string) {
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		if spec, ok := sections[key]; ok {
			out.Fields = append(out.Fields, spec)
			return
		}
		out.Fields = append(out.Fields, scalarSpec(cfg.policy, key))
	}

	// Emit fields in first-seen document order. Scalar keys inside a section
	// body are scoped to the element, not the top level, but conditionals
	// found there still test the outer content data and keep a top-level
	// entry. A conditional-only key needs an entry of its own either way: the
	// schema has no boolean shape, presence of a string is what the
	// conditional tests.
	var conditionalKeys func(nodes []*parser.Node)
	conditionalKeys = func(nodes []*parser.Node) {
		for _, n := range nodes {
			if n.Type == parser.NodeConditional {
				add(n.Key)
				conditionalKeys(n.Children)
			}
		}
	}
	var walk func(nodes []*parser.Node)
	walk = func(nodes []*parser.Node) {
		for _, n := range nodes {
			switch n.Type {
			case parser.NodeScalar:
				add(n.Key)
			case parser.NodeSection:
				add(n.Key)
				conditionalKeys(n.Children)
			case parser.NodeConditional:
				add(n.Key)
				walk(n.Children)
			}
		}
	}
	walk(tree.Nodes)

	if err := out.Validate(); err != nil {
		return schema.ContentSchema{}, err
	}
	return out, nil
}

func scalarSpec(policy NamingPolicy, key string) schema.FieldSpec {
	hints := policy(key, schema.TypeString)
	if hints.MaxLength <= 0 {
		hints.MaxLength = defaultScalarMaxLength
	}
	return schema.FieldSpec{Key: key, Type: schema.TypeString, MaxLength: hints.MaxLength}
}

// sectionSpec classifies one section body: a bare {{.}} and no named markers
// means string list, named markers and no {{.}} means object list. A body
// mixing both is an authoring error, never guessed at.
func sectionSpec(policy NamingPolicy, ref template.Ref, sec *parser.Node) (schema.FieldSpec, error) {
	var (
		hasElement bool
		elementAt  int
		keys       []string
		keySeen    = make(map[string]struct{})
	)

	var walk func(nodes []*parser.Node)
	walk = func(nodes []*parser.Node) {
		for _, n := range nodes {
			switch n.Type {
			case parser.NodeElement:
				if !hasElement {
					hasElement = true
					elementAt = n.Offset
				}
			case parser.NodeScalar:
				if n.Key == sec.Key {
					continue
				}
				if _, dup := keySeen[n.Key]; !dup {
					keySeen[n.Key] = struct{}{}
					keys = append(keys, n.Key)
				}
			case parser.NodeConditional:
				walk(n.Children)
			}
		}
	}
	walk(sec.Children)

	if hasElement && len(keys) > 0 {
		return schema.FieldSpec{}, &template.SyntaxError{
			Ref:    ref,
			Offset: elementAt,
			Detail: fmt.Sprintf("section {{#%s}} mixes {{.}} with named markers %v", sec.Key, keys),
		}
	}

	if hasElement {
		hints := listHints(policy(sec.Key, schema.TypeStringList))
		return schema.FieldSpec{
			Key:           sec.Key,
			Type:          schema.TypeStringList,
			MinItems:      hints.MinItems,
			MaxItems:      hints.MaxItems,
			ItemMaxLength: hints.ItemMaxLength,
		}, nil
	}

	hints := listHints(policy(sec.Key, schema.TypeObjectList))
	spec := schema.FieldSpec{
		Key:      sec.Key,
		Type:     schema.TypeObjectList,
		MinItems: hints.MinItems,
		MaxItems: hints.MaxItems,
	}
	for _, key := range keys {
		spec.Fields = append(spec.Fields, scalarSpec(policy, key))
	}
	return spec, nil
}

func listHints(hints SizeHints) SizeHints {
	if hints.MinItems <= 0 {
		hints.MinItems = defaultMinItems
	}
	if hints.MaxItems <= 0 {
		hints.MaxItems = defaultMaxItems
	}
	if hints.ItemMaxLength <= 0 {
		hints.ItemMaxLength = defaultItemMaxLength
	}
	return hints
}
