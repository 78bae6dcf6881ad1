package extract

import (
	"fmt"
	"strings"

	"kyc-verifier/api/internal/domain"
	"kyc-verifier/api/internal/imageprep"
)

type Kind string

const (
	KindTextRelay    Kind = "text-relay"
	KindDirectVision Kind = "direct-vision"
)

// ParseKind accepts the canonical names and the short aliases "ocr" and "llm".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(KindTextRelay), "ocr":
		return KindTextRelay, nil
	case string(KindDirectVision), "llm":
		return KindDirectVision, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q (want %s or %s)",
			domain.ErrConfiguration, name, KindTextRelay, KindDirectVision)
	}
}

func (k Kind) Profile() imageprep.Profile {
	if k == KindDirectVision {
		return imageprep.ProfileDirectVision
	}
	return imageprep.ProfileTextRelay
}
