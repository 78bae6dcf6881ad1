package llm

import (
	"context"
	"encoding/json"

	"kyc-verifier/api/internal/util"
)

// Oracle is a schema-constrained extraction backend. Complete sends exactly one
// request and returns the model's JSON text as-is.
type Oracle interface {
	Name() string
	Complete(ctx context.Context, req Request) (json.RawMessage, error)
}

type Image struct {
	MIME string
	Data []byte
}

type Request struct {
	Schema Schema
	System string
	Text   string
	// Image is nil for text-only requests.
	Image       *Image
	Temperature float32
}

type Field struct {
	Name        string
	Description string
}

// Schema describes a flat object whose fields are all required strings.
type Schema struct {
	Name   string
	Fields []Field
}

func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		keys = append(keys, f.Name)
	}
	return keys
}

// JSONSchema renders the strict JSON schema: every property required, no extras.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = map[string]any{
			"type":        "string",
			"description": f.Description,
		}
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	util.FixJSONSchemaStrict(out)
	return out
}
