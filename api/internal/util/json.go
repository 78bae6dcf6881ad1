package util

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadPrompt reads <dir>/<group>/<name>.txt and falls back to def
// when dir is unset or the file is missing or empty.
func LoadPrompt(dir, group, name, def string) string {
	baseRoot := strings.TrimSpace(dir)
	if baseRoot == "" {
		return def
	}
	p := filepath.Join(baseRoot, group, name+".txt")
	if b, err := os.ReadFile(p); err == nil && len(strings.TrimSpace(string(b))) > 0 {
		return strings.TrimSpace(string(b))
	}
	return def
}

// FixJSONSchemaStrict brings a schema to the strict form OpenAI expects: every object
// with properties gets type=object, required listing all properties and
// additionalProperties=false.
func FixJSONSchemaStrict(node any) {
	switch n := node.(type) {
	case map[string]any:
		if props, ok := n["properties"].(map[string]any); ok {
			if _, hasType := n["type"]; !hasType {
				n["type"] = "object"
			}
			req := make([]any, 0, len(props))
			for k := range props {
				req = append(req, k)
			}
			n["required"] = req
			n["additionalProperties"] = false
			for _, v := range props {
				FixJSONSchemaStrict(v)
			}
		}
		if items, ok := n["items"]; ok {
			switch it := items.(type) {
			case map[string]any:
				FixJSONSchemaStrict(it)
			case []any:
				for _, el := range it {
					FixJSONSchemaStrict(el)
				}
			}
		}
		for _, k := range []string{"oneOf", "anyOf", "allOf"} {
			if v, ok := n[k]; ok {
				if arr, ok := v.([]any); ok {
					for _, el := range arr {
						FixJSONSchemaStrict(el)
					}
				}
			}
		}
	case []any:
		for _, v := range n {
			FixJSONSchemaStrict(v)
		}
	}
}

// ExtractResponsesText pulls the model text out of an OpenAI Responses API envelope.
// It prefers `output_text`, otherwise concatenates `output[i].content[j].text`
// segments of type `output_text` or `text`.
func ExtractResponsesText(r io.Reader) (string, error) {
	type content struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	type output struct {
		Type    string    `json:"type"`
		Content []content `json:"content"`
	}
	var env struct {
		Status     string   `json:"status"`
		Output     []output `json:"output"`
		OutputText string   `json:"output_text"`
		Error      *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return "", fmt.Errorf("responses: decode envelope: %w", err)
	}
	if env.Error != nil && env.Error.Message != "" {
		return "", fmt.Errorf("responses: %s", env.Error.Message)
	}
	if s := strings.TrimSpace(env.OutputText); s != "" {
		return s, nil
	}

	var b strings.Builder
	for _, o := range env.Output {
		for _, c := range o.Content {
			if strings.TrimSpace(c.Text) == "" {
				continue
			}
			if c.Type == "output_text" || c.Type == "text" || c.Type == "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(c.Text)
			}
		}
	}
	return b.String(), nil
}
