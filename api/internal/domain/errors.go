package domain

import "errors"

// Error kinds surfaced by the pipeline. Adapters wrap the underlying cause
// with one of these so callers can branch with errors.Is.
var (
	ErrDecode        = errors.New("decode error")
	ErrConfiguration = errors.New("configuration error")
	ErrOCR           = errors.New("ocr error")
	ErrExtraction    = errors.New("extraction error")
	ErrComparison    = errors.New("comparison error")
)
