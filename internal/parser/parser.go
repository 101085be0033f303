// Package parser tokenizes template documents into a node tree shared by the
// schema inferencer and the renderer. It understands the four marker forms
// used by the template corpus: {{key}}, {{#key}}…{{/key}}, {{.}}, and
// <!-- IF key -->…<!-- ENDIF key -->.
package parser

import (
	"fmt"
	"regexp"

	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// NodeType discriminates the parse tree nodes.
type NodeType int

const (
	// NodeText is a literal run of document text.
	NodeText NodeType = iota
	// NodeScalar is a {{key}} placeholder.
	NodeScalar
	// NodeElement is the {{.}} marker, valid only inside a section body.
	NodeElement
	// NodeSection is a {{#key}}…{{/key}} block repeated per array element.
	NodeSection
	// NodeConditional is an <!-- IF key -->…<!-- ENDIF key --> block.
	NodeConditional
)

// Node is one element of the parse tree. Section and conditional nodes carry
// their body in Children; text nodes carry the literal in Text.
type Node struct {
	Type     NodeType
	Key      string
	Text     string
	Offset   int
	Children []*Node
}

// Tree is the parsed form of one document. Trees are immutable after Parse
// and safe for concurrent render walks.
type Tree struct {
	Nodes []*Node
}

var markerRe = regexp.MustCompile(
	`\{\{\s*([#/]?)\s*([A-Za-z0-9_][A-Za-z0-9_.-]*|\.)\s*\}\}` +
		`|<!--\s*(IF|ENDIF)\s+([A-Za-z0-9_][A-Za-z0-9_.-]*)\s*-->`)

type frame struct {
	node *Node
}

// Parse scans text and builds the node tree, validating that every opened
// section and conditional closes with the identical key in proper nesting
// order. The ref is only used to label syntax errors.
func Parse(ref template.Ref, text string) (*Tree, error) {
	tree := &Tree{}
	stack := []frame{}

	appendNode := func(n *Node) {
		if len(stack) == 0 {
			tree.Nodes = append(tree.Nodes, n)
			return
		}
		top := stack[len(stack)-1].node
		top.Children = append(top.Children, n)
	}

	syntaxErr := func(offset int, format string, args ...any) error {
		return &template.SyntaxError{Ref: ref, Offset: offset, Detail: fmt.Sprintf(format, args...)}
	}

	inSection := func() bool {
		for _, f := range stack {
			if f.node.Type == NodeSection {
				return true
			}
		}
		return false
	}

	pos := 0
	for _, loc := range markerRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > pos {
			appendNode(&Node{Type: NodeText, Text: text[pos:start], Offset: pos})
		}
		pos = end

		group := func(i int) string {
			if loc[2*i] < 0 {
				return ""
			}
			return text[loc[2*i]:loc[2*i+1]]
		}

		switch {
		case group(2) == ".":
			if !inSection() {
				return nil, syntaxErr(start, "element marker {{.}} outside a section")
			}
			appendNode(&Node{Type: NodeElement, Offset: start})

		case group(2) != "":
			key := group(2)
			switch group(1) {
			case "#":
				if inSection() {
					return nil, syntaxErr(start, "section {{#%s}} opened inside another section", key)
				}
				node := &Node{Type: NodeSection, Key: key, Offset: start}
				appendNode(node)
				stack = append(stack, frame{node: node})
			case "/":
				if len(stack) == 0 {
					return nil, syntaxErr(start, "close marker {{/%s}} without an open section", key)
				}
				top := stack[len(stack)-1].node
				if top.Type != NodeSection || top.Key != key {
					return nil, syntaxErr(start, "close marker {{/%s}} does not match open %s", key, describe(top))
				}
				stack = stack[:len(stack)-1]
			default:
				appendNode(&Node{Type: NodeScalar, Key: key, Offset: start})
			}

		case group(3) == "IF":
			node := &Node{Type: NodeConditional, Key: group(4), Offset: start}
			appendNode(node)
			stack = append(stack, frame{node: node})

		case group(3) == "ENDIF":
			key := group(4)
			if len(stack) == 0 {
				return nil, syntaxErr(start, "ENDIF %s without an open conditional", key)
			}
			top := stack[len(stack)-1].node
			if top.Type != NodeConditional || top.Key != key {
				return nil, syntaxErr(start, "ENDIF %s does not match open %s", key, describe(top))
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1].node
		return nil, syntaxErr(top.Offset, "%s is never closed", describe(top))
	}

	if pos < len(text) {
		tree.Nodes = append(tree.Nodes, &Node{Type: NodeText, Text: text[pos:], Offset: pos})
	}
	return tree, nil
}

func describe(n *Node) string {
	switch n.Type {
	case NodeSection:
		return fmt.Sprintf("section {{#%s}}", n.Key)
	case NodeConditional:
		return fmt.Sprintf("conditional IF %s", n.Key)
	default:
		return fmt.Sprintf("marker %q", n.Key)
	}
}
