package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"kyc-verifier/api/internal/llm"
	"kyc-verifier/api/internal/util"
)

const defaultURL = "https://api.openai.com/v1/responses"

type Engine struct {
	APIKey      string
	TextModel   string
	VisionModel string
	url         string
	httpc       *http.Client
}

type Option func(*Engine)

func WithURL(u string) Option {
	return func(e *Engine) { e.url = u }
}

// WithHTTPClient overrides the internal HTTP client (e.g., for custom timeouts or tracing).
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		if c != nil {
			e.httpc = c
		}
	}
}

func New(key, textModel, visionModel string, opts ...Option) *Engine {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	e := &Engine{
		APIKey:      strings.TrimSpace(key),
		TextModel:   textModel,
		VisionModel: visionModel,
		url:         defaultURL,
		// deadline comes from the request context
		httpc: &http.Client{Transport: tr},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Name() string { return "openai" }

// Model picks the vision model for requests carrying an image.
func (e *Engine) Model(req llm.Request) string {
	if req.Image != nil {
		return e.VisionModel
	}
	return e.TextModel
}

func (e *Engine) Complete(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	if e.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is empty")
	}

	user := []any{
		map[string]any{"type": "input_text", "text": req.Text},
	}
	if req.Image != nil {
		user = append(user, map[string]any{
			"type":      "input_image",
			"image_url": util.MakeDataURL(req.Image.MIME, base64.StdEncoding.EncodeToString(req.Image.Data)),
		})
	}

	body := map[string]any{
		"model": e.Model(req),
		"input": []any{
			map[string]any{
				"role": "system",
				"content": []any{
					map[string]any{"type": "input_text", "text": req.System},
				},
			},
			map[string]any{
				"role":    "user",
				"content": user,
			},
		},
		"temperature": req.Temperature,
		"text": map[string]any{
			"format": map[string]any{
				"type":   "json_schema",
				"name":   req.Schema.Name,
				"strict": true,
				"schema": req.Schema.JSONSchema(),
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai responses %d: %s", resp.StatusCode, util.TruncateBytes(bytes.TrimSpace(raw), 1024))
	}

	out, err := util.ExtractResponsesText(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if out = strings.TrimSpace(out); out == "" {
		return nil, fmt.Errorf("responses: empty output; body=%s", util.TruncateBytes(raw, 1024))
	}
	return json.RawMessage(out), nil
}
