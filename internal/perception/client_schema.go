package perception

import (
	"fmt"

	"google.golang.org/genai"

	"nansc/internal/tools"
)

// FunctionDeclarations converts registry tools to Gemini declarations.
func FunctionDeclarations(ts []*tools.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(ts))
	for _, t := range ts {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaFor(t.Schema),
		})
	}
	return decls
}

func schemaFor(s tools.ToolSchema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = propertySchema(p)
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   s.Required,
	}
}

func propertySchema(p tools.Property) *genai.Schema {
	sch := &genai.Schema{
		Type:        schemaType(p.Type),
		Description: p.Description,
	}
	for _, e := range p.Enum {
		sch.Enum = append(sch.Enum, fmt.Sprint(e))
	}
	if p.Items != nil {
		sch.Items = &genai.Schema{Type: schemaType(p.Items.Type)}
	}
	return sch
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
