package ocr

import "context"

// Input is a normalized image ready for transmission to an OCR engine.
type Input struct {
	Data []byte
	MIME string
}

// Recognizer turns an image into plain text. An empty string means no text was found.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, in Input) (string, error)
}

// Options tune a single recognition call on engines that support them.
type Options struct {
	Langs []string
	Model string
}
