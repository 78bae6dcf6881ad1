package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port     string
	LogLevel string

	OracleProvider    string
	OpenAIAPIKey      string
	OpenAITextModel   string
	OpenAIVisionModel string
	GeminiAPIKey      string
	GeminiModel       string

	YCOAuthToken string
	YCFolderID   string
	YCOCRModel   string
	YCOCRLangs   []string

	DefaultStrategy string
	// Abbreviations extends the built-in street suffix table (lower-cased keys).
	Abbreviations map[string]string
	PromptDir     string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	abbr, err := parseAbbreviations(os.Getenv("ABBREVIATIONS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OracleProvider:    strings.ToLower(getEnv("ORACLE_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAITextModel:   getEnv("OPENAI_TEXT_MODEL", "gpt-4o-mini"),
		OpenAIVisionModel: getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		YCOAuthToken: getEnv("YC_OAUTH_TOKEN", ""),
		YCFolderID:   getEnv("YC_FOLDER_ID", ""),
		YCOCRModel:   getEnv("YC_OCR_MODEL", "page"),
		YCOCRLangs:   splitList(getEnv("YC_OCR_LANGS", "en")),

		DefaultStrategy: getEnv("DEFAULT_STRATEGY", "text-relay"),
		Abbreviations:   abbr,
		PromptDir:       getEnv("PROMPT_DIR", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected oracle provider has credentials and that the
// OCR credentials are either complete or absent.
func (c *Config) Validate() error {
	var problems []string
	switch c.OracleProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is required for provider openai")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			problems = append(problems, "GEMINI_API_KEY is required for provider gemini")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown ORACLE_PROVIDER %q", c.OracleProvider))
	}
	if (c.YCOAuthToken == "") != (c.YCFolderID == "") {
		problems = append(problems, "YC_OAUTH_TOKEN and YC_FOLDER_ID must be set together")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// OCREnabled reports whether the text-relay strategy has an OCR engine to talk to.
func (c *Config) OCREnabled() bool {
	return c.YCOAuthToken != "" && c.YCFolderID != ""
}

// parseAbbreviations reads "Str=Street,Pl=Place".
func parseAbbreviations(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range splitList(raw) {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("invalid ABBREVIATIONS entry %q", pair)
		}
		out[k] = v
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
