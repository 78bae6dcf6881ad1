package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":"b"}`, StripCodeFences("```json\n{\"a\":\"b\"}\n```"))
	assert.Equal(t, `{"a":"b"}`, StripCodeFences("```{\"a\":\"b\"}```"))
	assert.Equal(t, `{"a":"b"}`, StripCodeFences(`  {"a":"b"}  `))
}

func TestFixJSONSchemaStrict(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
			"b": map[string]any{"type": "string"},
		},
	}
	FixJSONSchemaStrict(schema)

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, []any{"a", "b"}, schema["required"])
}

func TestExtractResponsesText(t *testing.T) {
	t.Run("output_text shortcut", func(t *testing.T) {
		out, err := ExtractResponsesText(strings.NewReader(`{"output_text":" {\"x\":\"1\"} "}`))
		require.NoError(t, err)
		assert.Equal(t, `{"x":"1"}`, out)
	})

	t.Run("message content", func(t *testing.T) {
		body := `{"output":[{"type":"message","content":[{"type":"output_text","text":"{\"x\":\"1\"}"}]}]}`
		out, err := ExtractResponsesText(strings.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, `{"x":"1"}`, out)
	})

	t.Run("error envelope", func(t *testing.T) {
		_, err := ExtractResponsesText(strings.NewReader(`{"error":{"message":"quota"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota")
	})
}

func TestLoadPrompt(t *testing.T) {
	assert.Equal(t, "default", LoadPrompt("", "extract", "text-relay", "default"))

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "extract"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extract", "text-relay.txt"), []byte(" custom \n"), 0o644))

	assert.Equal(t, "custom", LoadPrompt(dir, "extract", "text-relay", "default"))
	assert.Equal(t, "default", LoadPrompt(dir, "extract", "direct-vision", "default"))
	assert.Equal(t, "default", LoadPrompt(filepath.Join(dir, "missing"), "extract", "text-relay", "default"))
}

func TestSniffMime(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

	assert.Equal(t, "JPEG", SniffMimeForOCR(jpeg))
	assert.Equal(t, "PNG", SniffMimeForOCR(png))
	assert.Equal(t, "", SniffMimeForOCR([]byte("nope")))
	assert.Equal(t, "data:image/png;base64,QQ==", MakeDataURL("image/png", "QQ=="))
}
