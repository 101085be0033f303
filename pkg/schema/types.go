// Package schema defines the content schema inferred from template documents:
// the structural contract (field names, shapes, size hints) that content
// generators target and the renderer clamps against.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// FieldType is the shape of one content field.
type FieldType string

const (
	TypeString     FieldType = "string"
	TypeStringList FieldType = "string[]"
	TypeObjectList FieldType = "object[]"
)

// FieldSpec describes one field of a content schema. Scalar specs carry
// MaxLength; list specs carry item counts, and object lists nest their
// element's scalar specs in Fields.
type FieldSpec struct {
	Key           string      `json:"key"`
	Type          FieldType   `json:"type"`
	MaxLength     int         `json:"maxLength,omitempty"`
	MinItems      int         `json:"minItems,omitempty"`
	MaxItems      int         `json:"maxItems,omitempty"`
	ItemMaxLength int         `json:"itemMaxLength,omitempty"`
	Fields        []FieldSpec `json:"fields,omitempty"`
}

// ContentSchema is the inferred contract for one (kind, templateId). Field
// order follows first appearance in the template document and is preserved
// through JSON round trips.
type ContentSchema struct {
	Kind       template.Kind `json:"kind"`
	TemplateID string        `json:"templateId"`
	Fields     []FieldSpec   `json:"fields"`
}

// Field returns the top-level spec for key.
func (s ContentSchema) Field(key string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks the structural invariants: known kind, non-empty template
// id, no duplicate top-level keys, shape-consistent specs.
func (s ContentSchema) Validate() error {
	if _, err := template.ParseKind(string(s.Kind)); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if s.TemplateID == "" {
		return fmt.Errorf("schema: template id is required")
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Key == "" {
			return fmt.Errorf("schema %s/%s: field with empty key", s.Kind, s.TemplateID)
		}
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("schema %s/%s: duplicate field key %q", s.Kind, s.TemplateID, f.Key)
		}
		seen[f.Key] = struct{}{}
		if err := f.validate(); err != nil {
			return fmt.Errorf("schema %s/%s: %w", s.Kind, s.TemplateID, err)
		}
	}
	return nil
}

func (f FieldSpec) validate() error {
	switch f.Type {
	case TypeString:
		if len(f.Fields) > 0 {
			return fmt.Errorf("field %q: scalar spec must not nest fields", f.Key)
		}
	case TypeStringList:
		if len(f.Fields) > 0 {
			return fmt.Errorf("field %q: string list spec must not nest fields", f.Key)
		}
	case TypeObjectList:
		nested := make(map[string]struct{}, len(f.Fields))
		for _, n := range f.Fields {
			if n.Type != TypeString {
				return fmt.Errorf("field %q: nested field %q must be a scalar", f.Key, n.Key)
			}
			if _, dup := nested[n.Key]; dup {
				return fmt.Errorf("field %q: duplicate nested key %q", f.Key, n.Key)
			}
			nested[n.Key] = struct{}{}
		}
	default:
		return fmt.Errorf("field %q: unknown type %q", f.Key, f.Type)
	}
	return nil
}

// Encode serialises the schema to the canonical indented JSON stored on
// disk. The output is deterministic for a given schema value, which keeps
// repeated inference runs byte-identical.
func (s ContentSchema) Encode() ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: encode %s/%s: %w", s.Kind, s.TemplateID, err)
	}
	return append(out, '\n'), nil
}

// Decode parses a schema file, validating invariants after unmarshalling.
func Decode(raw []byte) (ContentSchema, error) {
	var s ContentSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return ContentSchema{}, fmt.Errorf("schema: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return ContentSchema{}, err
	}
	return s, nil
}
