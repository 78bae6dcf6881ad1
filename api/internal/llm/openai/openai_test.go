package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyc-verifier/api/internal/llm"
)

var schema = llm.Schema{Name: "document_fields", Fields: []llm.Field{{Name: "first_name"}}}

func serve(t *testing.T, status int, reply string, got *map[string]any) *Engine {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return New("sk-test", "gpt-4o-mini", "gpt-4o", WithURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestCompleteTextRequest(t *testing.T) {
	var body map[string]any
	e := serve(t, http.StatusOK, `{"output":[{"type":"message","content":[{"type":"output_text","text":"{\"first_name\":\"John\"}"}]}]}`, &body)

	out, err := e.Complete(context.Background(), llm.Request{Schema: schema, System: "sys", Text: "ocr text"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"first_name":"John"}`, string(out))

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, float64(0), body["temperature"])

	format := body["text"].(map[string]any)["format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, true, format["strict"])
	assert.Equal(t, "document_fields", format["name"])
	assert.Equal(t, false, format["schema"].(map[string]any)["additionalProperties"])

	input := body["input"].([]any)
	require.Len(t, input, 2)
	user := input[1].(map[string]any)["content"].([]any)
	assert.Len(t, user, 1)
}

func TestCompleteVisionRequest(t *testing.T) {
	var body map[string]any
	e := serve(t, http.StatusOK, `{"output_text":"{\"first_name\":\"John\"}"}`, &body)

	_, err := e.Complete(context.Background(), llm.Request{
		Schema: schema,
		Text:   "read it",
		Image:  &llm.Image{MIME: "image/jpeg", Data: []byte{0xFF, 0xD8}},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", body["model"])
	user := body["input"].([]any)[1].(map[string]any)["content"].([]any)
	require.Len(t, user, 2)
	img := user[1].(map[string]any)
	assert.Equal(t, "input_image", img["type"])
	assert.Equal(t, "data:image/jpeg;base64,/9g=", img["image_url"])
}

func TestCompleteErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		_, err := serve(t, http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, nil).
			Complete(context.Background(), llm.Request{Schema: schema})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty output", func(t *testing.T) {
		_, err := serve(t, http.StatusOK, `{"output":[]}`, nil).
			Complete(context.Background(), llm.Request{Schema: schema})
		assert.Error(t, err)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := New("", "a", "b").Complete(context.Background(), llm.Request{Schema: schema})
		assert.Error(t, err)
	})
}
