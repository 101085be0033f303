package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema files are treated as source of truth once generated and may be
// hand-edited; validating them against this JSON Schema on load catches
// drift before a bad schema corrupts renders.
const fileSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["kind", "templateId", "fields"],
  "additionalProperties": false,
  "properties": {
    "kind": { "enum": ["capture", "vente"] },
    "templateId": { "type": "string", "minLength": 1 },
    "fields": {
      "type": "array",
      "items": { "$ref": "#/$defs/field" }
    }
  },
  "$defs": {
    "field": {
      "type": "object",
      "required": ["key", "type"],
      "additionalProperties": false,
      "properties": {
        "key": { "type": "string", "minLength": 1 },
        "type": { "enum": ["string", "string[]", "object[]"] },
        "maxLength": { "type": "integer", "minimum": 1 },
        "minItems": { "type": "integer", "minimum": 0 },
        "maxItems": { "type": "integer", "minimum": 1 },
        "itemMaxLength": { "type": "integer", "minimum": 1 },
        "fields": {
          "type": "array",
          "items": { "$ref": "#/$defs/field" }
        }
      }
    }
  }
}`

var compiledFileSchema = jsonschema.MustCompileString("content-schema.json", fileSchema)

// ValidateBytes checks a raw schema file against the content-schema JSON
// Schema, then decodes and re-validates the structural invariants.
func ValidateBytes(raw []byte) (ContentSchema, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ContentSchema{}, fmt.Errorf("schema: invalid JSON: %w", err)
	}
	if err := compiledFileSchema.Validate(doc); err != nil {
		return ContentSchema{}, fmt.Errorf("schema: file does not match content-schema contract: %s", flattenValidation(err))
	}
	return Decode(raw)
}

func flattenValidation(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	leaves := ve.BasicOutput().Errors
	parts := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		if leaf.Error == "" {
			continue
		}
		loc := leaf.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		parts = append(parts, loc+": "+leaf.Error)
	}
	if len(parts) == 0 {
		return ve.Error()
	}
	return strings.Join(parts, "; ")
}
