package extract

import (
	"context"
	"fmt"

	"kyc-verifier/api/internal/domain"
	"kyc-verifier/api/internal/imageprep"
	"kyc-verifier/api/internal/llm"
	"kyc-verifier/api/internal/ocr"
)

// Strategy turns a normalized image into a single oracle request.
// The set of implementations is closed: TextRelay and DirectVision.
type Strategy interface {
	Kind() Kind
	Profile() imageprep.Profile
	BuildRequest(ctx context.Context, img *imageprep.Normalized) (llm.Request, error)
	strategy()
}

// Resolve returns the strategy for kind. Text-relay needs an OCR engine.
// promptDir may override the embedded system prompts; empty keeps them.
func Resolve(kind Kind, rec ocr.Recognizer, promptDir string) (Strategy, error) {
	switch kind {
	case KindTextRelay:
		if rec == nil {
			return nil, fmt.Errorf("%w: strategy %s needs an OCR engine", domain.ErrConfiguration, kind)
		}
		return NewTextRelay(rec, promptDir), nil
	case KindDirectVision:
		return DirectVision{PromptDir: promptDir}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrConfiguration, kind)
	}
}

// TextRelay runs OCR first and asks the oracle to structure the recognised text.
type TextRelay struct {
	rec       ocr.Recognizer
	promptDir string
}

func NewTextRelay(rec ocr.Recognizer, promptDir string) *TextRelay {
	return &TextRelay{rec: rec, promptDir: promptDir}
}

func (*TextRelay) Kind() Kind                 { return KindTextRelay }
func (*TextRelay) Profile() imageprep.Profile { return imageprep.ProfileTextRelay }
func (*TextRelay) strategy()                  {}

func (s *TextRelay) BuildRequest(ctx context.Context, img *imageprep.Normalized) (llm.Request, error) {
	if err := checkImage(s, img); err != nil {
		return llm.Request{}, err
	}
	// empty text is passed through as "nothing found"
	text, err := s.rec.Recognize(ctx, ocr.Input{Data: img.Payload, MIME: img.MIME})
	if err != nil {
		return llm.Request{}, fmt.Errorf("%w: %s: %w", domain.ErrOCR, s.rec.Name(), err)
	}
	return llm.Request{
		Schema: DocumentSchema(),
		System: systemPrompt(s.promptDir, KindTextRelay),
		Text:   textRelayUserPrompt(text),
	}, nil
}

// DirectVision hands the re-encoded image to a multimodal oracle.
type DirectVision struct {
	PromptDir string
}

func (DirectVision) Kind() Kind                 { return KindDirectVision }
func (DirectVision) Profile() imageprep.Profile { return imageprep.ProfileDirectVision }
func (DirectVision) strategy()                  {}

func (s DirectVision) BuildRequest(_ context.Context, img *imageprep.Normalized) (llm.Request, error) {
	if err := checkImage(s, img); err != nil {
		return llm.Request{}, err
	}
	return llm.Request{
		Schema: DocumentSchema(),
		System: systemPrompt(s.PromptDir, KindDirectVision),
		Text:   directVisionUserPrompt,
		Image:  &llm.Image{MIME: img.MIME, Data: img.Payload},
	}, nil
}

func checkImage(s Strategy, img *imageprep.Normalized) error {
	if img == nil || len(img.Payload) == 0 {
		return fmt.Errorf("%w: no normalized image for %s", domain.ErrDecode, s.Kind())
	}
	if img.Profile != s.Profile() {
		return fmt.Errorf("%w: image normalized for %s, strategy is %s", domain.ErrConfiguration, img.Profile, s.Kind())
	}
	return nil
}
