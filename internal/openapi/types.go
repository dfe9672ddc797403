package openapi

import "github.com/getkin/kin-openapi/openapi3"

// TypeMapping pairs an OpenAPI type with its format.
type TypeMapping struct {
	Type   string // string, integer, number, boolean, object, array
	Format string // uuid, date-time, int32, int64, uri, ...
}

// Field kinds used by the directory models.
var (
	tString   = TypeMapping{"string", ""}
	tUUID     = TypeMapping{"string", "uuid"}
	tDateTime = TypeMapping{"string", "date-time"}
	tURI      = TypeMapping{"string", "uri-reference"}
	tEmail    = TypeMapping{"string", "email"}
	tInt      = TypeMapping{"integer", "int32"}
	tInt64    = TypeMapping{"integer", "int64"}
	tBool     = TypeMapping{"boolean", ""}
	tStrings  = TypeMapping{"array", ""}
)

// field describes one property of a component schema.
type field struct {
	Name     string
	Type     TypeMapping
	Nullable bool
	Required bool
	Desc     string
}

func typeSchema(m TypeMapping, nullable bool) *openapi3.Schema {
	types := openapi3.Types{m.Type}
	if nullable {
		types = append(types, "null")
	}
	s := &openapi3.Schema{Type: &types}
	if m.Format != "" {
		s.Format = m.Format
	}
	if m.Type == "array" {
		s.Items = &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}
	}
	return s
}

// objectSchema builds an object schema from fields in declaration order.
func objectSchema(fields ...field) *openapi3.SchemaRef {
	s := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: openapi3.Schemas{},
	}
	for _, f := range fields {
		prop := typeSchema(f.Type, f.Nullable)
		prop.Description = f.Desc
		s.Properties[f.Name] = &openapi3.SchemaRef{Value: prop}
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
	return &openapi3.SchemaRef{Value: s}
}

// optional copies fields with Required cleared, for PATCH bodies.
func optional(fields []field) []field {
	out := make([]field, len(fields))
	for i, f := range fields {
		f.Required = false
		out[i] = f
	}
	return out
}
