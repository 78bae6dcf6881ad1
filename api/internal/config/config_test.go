package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "ORACLE_PROVIDER", "OPENAI_API_KEY", "OPENAI_TEXT_MODEL",
		"OPENAI_VISION_MODEL", "GEMINI_API_KEY", "GEMINI_MODEL", "YC_OAUTH_TOKEN",
		"YC_FOLDER_ID", "YC_OCR_MODEL", "YC_OCR_LANGS", "DEFAULT_STRATEGY",
		"ABBREVIATIONS", "PROMPT_DIR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.OracleProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAITextModel)
	assert.Equal(t, "gpt-4o", cfg.OpenAIVisionModel)
	assert.Equal(t, "text-relay", cfg.DefaultStrategy)
	assert.Equal(t, []string{"en"}, cfg.YCOCRLangs)
	assert.Empty(t, cfg.Abbreviations)
	assert.False(t, cfg.OCREnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORACLE_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("YC_OAUTH_TOKEN", "oauth")
	t.Setenv("YC_FOLDER_ID", "folder")
	t.Setenv("YC_OCR_LANGS", "en, de")
	t.Setenv("ABBREVIATIONS", "Str=Street, Pl=Place")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.OracleProvider)
	assert.Equal(t, []string{"en", "de"}, cfg.YCOCRLangs)
	assert.Equal(t, map[string]string{"str": "street", "pl": "place"}, cfg.Abbreviations)
	assert.True(t, cfg.OCREnabled())
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing openai key":  {},
		"missing gemini key":  {"ORACLE_PROVIDER": "gemini"},
		"unknown provider":    {"ORACLE_PROVIDER": "claude", "OPENAI_API_KEY": "k"},
		"half yandex config":  {"OPENAI_API_KEY": "k", "YC_OAUTH_TOKEN": "oauth"},
		"broken abbreviation": {"OPENAI_API_KEY": "k", "ABBREVIATIONS": "Str"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
