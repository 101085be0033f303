package schema

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// ExportOpenAPI publishes a content schema as an OpenAPI 3 object schema.
// The AI content-generation collaborator consumes this to shape structured
// output; the constraints are hints, not enforced contracts, matching the
// renderer's clamp-don't-reject behavior.
func ExportOpenAPI(s ContentSchema) (*openapi3.Schema, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	obj := openapi3.NewObjectSchema()
	obj.Title = fmt.Sprintf("%s/%s content", s.Kind, s.TemplateID)
	for _, f := range s.Fields {
		prop, err := exportField(f)
		if err != nil {
			return nil, err
		}
		obj.Properties[f.Key] = openapi3.NewSchemaRef("", prop)
	}
	return obj, nil
}

func exportField(f FieldSpec) (*openapi3.Schema, error) {
	switch f.Type {
	case TypeString:
		prop := openapi3.NewStringSchema()
		if f.MaxLength > 0 {
			prop.MaxLength = uint64Ptr(f.MaxLength)
		}
		return prop, nil

	case TypeStringList:
		item := openapi3.NewStringSchema()
		if f.ItemMaxLength > 0 {
			item.MaxLength = uint64Ptr(f.ItemMaxLength)
		}
		return listSchema(f, item), nil

	case TypeObjectList:
		item := openapi3.NewObjectSchema()
		for _, n := range f.Fields {
			nested, err := exportField(n)
			if err != nil {
				return nil, err
			}
			item.Properties[n.Key] = openapi3.NewSchemaRef("", nested)
			item.Required = append(item.Required, n.Key)
		}
		return listSchema(f, item), nil
	}
	return nil, fmt.Errorf("schema: export field %q: unknown type %q", f.Key, f.Type)
}

func listSchema(f FieldSpec, item *openapi3.Schema) *openapi3.Schema {
	arr := openapi3.NewArraySchema()
	arr.Items = openapi3.NewSchemaRef("", item)
	if f.MinItems > 0 {
		arr.MinItems = uint64(f.MinItems)
	}
	if f.MaxItems > 0 {
		arr.MaxItems = uint64Ptr(f.MaxItems)
	}
	return arr
}

func uint64Ptr(v int) *uint64 {
	u := uint64(v)
	return &u
}
