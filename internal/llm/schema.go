package llm

import "google.golang.org/genai"

// SchemaType is the JSON type of a schema node.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral subset of JSON Schema used to constrain
// structured output. Zero MinItems/MaxItems mean unbounded.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Order       []string // property order; also the required list when Required is nil
	Required    []string
	Items       *Schema
	Enum        []string
	MinItems    int
	MaxItems    int
}

// ObjectSchema builds an object schema whose properties are all required,
// in the given order.
func ObjectSchema(order []string, props map[string]*Schema) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Order: order, Required: order}
}

// ArraySchema builds an array schema of items.
func ArraySchema(items *Schema, minItems, maxItems int) *Schema {
	return &Schema{Type: TypeArray, Items: items, MinItems: minItems, MaxItems: maxItems}
}

// StringSchema builds a string schema, optionally limited to enum values.
func StringSchema(enum ...string) *Schema {
	return &Schema{Type: TypeString, Enum: enum}
}

func (s *Schema) required() []string {
	if s.Required != nil {
		return s.Required
	}
	return s.Order
}

// ToGenai converts the schema to the Gemini representation.
func (s *Schema) ToGenai() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Enum:        s.Enum,
	}
	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
	case TypeArray:
		out.Type = genai.TypeArray
	case TypeInteger:
		out.Type = genai.TypeInteger
	case TypeNumber:
		out.Type = genai.TypeNumber
	case TypeBoolean:
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.ToGenai()
		}
		out.PropertyOrdering = s.Order
		out.Required = s.required()
	}
	if s.Items != nil {
		out.Items = s.Items.ToGenai()
	}
	if s.MinItems > 0 {
		n := int64(s.MinItems)
		out.MinItems = &n
	}
	if s.MaxItems > 0 {
		n := int64(s.MaxItems)
		out.MaxItems = &n
	}
	return out
}

// ToJSONSchema converts the schema to a plain JSON Schema document.
func (s *Schema) ToJSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Type == TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.ToJSONSchema()
		}
		out["properties"] = props
		out["required"] = s.required()
		out["additionalProperties"] = false
	}
	if s.Items != nil {
		out["items"] = s.Items.ToJSONSchema()
	}
	if s.MinItems > 0 {
		out["minItems"] = s.MinItems
	}
	if s.MaxItems > 0 {
		out["maxItems"] = s.MaxItems
	}
	return out
}
