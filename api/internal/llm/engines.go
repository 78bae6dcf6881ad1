package llm

import (
	"fmt"
	"strings"

	"kyc-verifier/api/internal/domain"
)

// Engines holds the configured oracle backends; unset ones are nil.
type Engines struct {
	OpenAI Oracle
	Gemini Oracle
}

func (e *Engines) GetEngine(name string) (Oracle, error) {
	var o Oracle
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gpt", "openai":
		o = e.OpenAI
	case "gemini":
		o = e.Gemini
	default:
		return nil, fmt.Errorf("%w: unknown oracle provider %q; use 'openai' or 'gemini'", domain.ErrConfiguration, name)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: oracle provider %q is not configured", domain.ErrConfiguration, name)
	}
	return o, nil
}
