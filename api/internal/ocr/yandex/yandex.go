package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kyc-verifier/api/internal/ocr"
	"kyc-verifier/api/internal/util"
)

const defaultOCRURL = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"

type Engine struct {
	iamc     *IamClient
	folderID string
	opt      ocr.Options
	url      string
	httpc    *http.Client
}

type Option func(*Engine)

// WithEndpoints points the engine at alternative IAM and OCR URLs.
func WithEndpoints(iamURL, ocrURL string) Option {
	return func(e *Engine) {
		e.iamc.url = iamURL
		e.url = ocrURL
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		e.httpc = c
		e.iamc.httpc = c
	}
}

func New(oauthToken, folderID string, opt ocr.Options, opts ...Option) *Engine {
	e := &Engine{
		iamc:     NewIamClient(oauthToken),
		folderID: folderID,
		opt:      opt,
		url:      defaultOCRURL,
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Name() string { return "yandex" }

type request struct {
	Content       string   `json:"content"`
	MimeType      string   `json:"mimeType,omitempty"`      // "JPEG" | "PNG" | "PDF"
	LanguageCodes []string `json:"languageCodes,omitempty"` // ["en","de"]
	Model         string   `json:"model,omitempty"`         // "page" | "handwritten"
}

type textAnnotation struct {
	FullText string `json:"fullText,omitempty"`
	Blocks   []struct {
		Lines []struct {
			Text string `json:"text,omitempty"`
		} `json:"lines,omitempty"`
	} `json:"blocks,omitempty"`
}

type response struct {
	Result *struct {
		TextAnnotation *textAnnotation `json:"textAnnotation,omitempty"`
	} `json:"result,omitempty"`
}

// Recognize sends one recognition request. A 401 invalidates the cached IAM token
// and repeats the same request once with a fresh one, so a single call may issue
// two HTTP requests to the OCR endpoint.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (string, error) {
	mime := util.SniffMimeForOCR(in.Data)
	if mime == "" {
		return "", fmt.Errorf("yandex ocr: unsupported payload (declared %q)", in.MIME)
	}
	model := e.opt.Model
	if model == "" {
		model = "page"
	}
	payload, err := json.Marshal(request{
		Content:       base64.StdEncoding.EncodeToString(in.Data),
		MimeType:      mime,
		LanguageCodes: e.opt.Langs,
		Model:         model,
	})
	if err != nil {
		return "", err
	}

	resp, err := e.do(ctx, payload)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// expired IAM token: re-authenticate once
		resp.Body.Close()
		e.iamc.Invalidate()
		if resp, err = e.do(ctx, payload); err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("yandex ocr %d: %s", resp.StatusCode, util.TruncateBytes(x, 512))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("yandex ocr: decode response: %w", err)
	}
	return out.text(), nil
}

func (e *Engine) do(ctx context.Context, payload []byte) (*http.Response, error) {
	iamToken, err := e.iamc.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("yandex iam: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+iamToken)
	req.Header.Set("x-folder-id", e.folderID)
	return e.httpc.Do(req)
}

func (r *response) text() string {
	if r == nil || r.Result == nil || r.Result.TextAnnotation == nil {
		return ""
	}
	ta := r.Result.TextAnnotation
	if t := strings.TrimSpace(ta.FullText); t != "" {
		return t
	}
	// fallback: lines
	var lines []string
	for _, b := range ta.Blocks {
		for _, l := range b.Lines {
			if s := strings.TrimSpace(l.Text); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n")
}
