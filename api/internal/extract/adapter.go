package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"kyc-verifier/api/internal/domain"
	"kyc-verifier/api/internal/llm"
	"kyc-verifier/api/internal/util"
)

// Adapter issues one schema-constrained oracle call and validates the reply.
type Adapter struct {
	oracle llm.Oracle
}

func NewAdapter(o llm.Oracle) *Adapter {
	return &Adapter{oracle: o}
}

func (a *Adapter) RequestStructuredFields(ctx context.Context, req llm.Request) (domain.DocumentFields, error) {
	raw, err := a.oracle.Complete(ctx, req)
	if err != nil {
		return domain.DocumentFields{}, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, a.oracle.Name(), err)
	}
	return ParseFields(raw)
}

// ParseFields accepts exactly one JSON object whose values are all strings and
// whose keys are exactly the DocumentFields keys.
func ParseFields(raw []byte) (domain.DocumentFields, error) {
	text := util.StripCodeFences(string(raw))

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return domain.DocumentFields{}, fmt.Errorf("%w: reply is not a JSON object: %w", domain.ErrExtraction, err)
	}
	if obj == nil {
		return domain.DocumentFields{}, fmt.Errorf("%w: reply is null", domain.ErrExtraction)
	}

	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return domain.DocumentFields{}, fmt.Errorf("%w: key %s is %T, want string", domain.ErrExtraction, k, v)
		}
		fields[k] = s
	}
	return domain.DocumentFieldsFromMap(fields)
}
