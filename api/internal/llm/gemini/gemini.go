package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"kyc-verifier/api/internal/llm"
)

type Engine struct {
	Model  string
	client *genai.Client
}

// New creates the Gemini client once; callers must Close the engine on shutdown.
func New(ctx context.Context, apiKey, model string) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Engine{Model: strings.TrimSpace(model), client: cl}, nil
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) Close() error {
	if e == nil || e.client == nil {
		return nil
	}
	return e.client.Close()
}

func (e *Engine) Complete(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	m := e.client.GenerativeModel(e.Model)
	if m == nil {
		return nil, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(req.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(req.Schema),
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := m.GenerateContent(ctx, parts(req)...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return nil, fmt.Errorf("gemini generate: empty response")
	}
	return json.RawMessage(txt), nil
}

func parts(req llm.Request) []genai.Part {
	out := []genai.Part{genai.Text(req.Text)}
	if req.Image != nil {
		out = append(out, genai.Blob{MIMEType: req.Image.MIME, Data: req.Image.Data})
	}
	return out
}

// responseSchema mirrors llm.Schema: an object of string properties, all required.
func responseSchema(s llm.Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = &genai.Schema{Type: genai.TypeString, Description: f.Description}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   s.Keys(),
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
