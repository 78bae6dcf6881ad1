package imageprep

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"kyc-verifier/api/internal/domain"
)

type Profile int

const (
	// ProfileTextRelay prepares a scan for an OCR engine.
	ProfileTextRelay Profile = iota + 1
	// ProfileDirectVision prepares a scan for a multimodal oracle.
	ProfileDirectVision
)

func (p Profile) String() string {
	switch p {
	case ProfileTextRelay:
		return "text-relay"
	case ProfileDirectVision:
		return "direct-vision"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

const (
	textRelayContrast    = 2.0
	directVisionContrast = 7.0
	jpegQuality          = 90

	// MaxPixels bounds width*height of an accepted scan (an A4 page at 600 dpi is ~35 MP).
	MaxPixels = 50_000_000
)

var sharpenKernel = [9]float64{
	-2, -2, -2,
	-2, 32, -2,
	-2, -2, -2,
}

type Normalized struct {
	Image   *image.NRGBA
	Payload []byte
	MIME    string
	Profile Profile
}

// Normalize decodes raw (EXIF orientation applied), flattens it to opaque RGB and
// applies the enhancement of the given profile. Payload holds the re-encoded image:
// PNG for text-relay, JPEG for direct-vision.
func Normalize(raw []byte, p Profile) (*Normalized, error) {
	if p != ProfileTextRelay && p != ProfileDirectVision {
		return nil, fmt.Errorf("%w: unsupported image profile %s", domain.ErrConfiguration, p)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrDecode)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: image is %dx%d, limit is %d pixels", domain.ErrDecode, cfg.Width, cfg.Height, MaxPixels)
	}
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	img := toRGB(src)
	format, mime := imaging.PNG, "image/png"
	switch p {
	case ProfileTextRelay:
		img = contrast(img, textRelayContrast)
	case ProfileDirectVision:
		img = imaging.Convolve3x3(img, sharpenKernel, &imaging.ConvolveOptions{Normalize: true})
		img = contrast(img, directVisionContrast)
		format, mime = imaging.JPEG, "image/jpeg"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p, err)
	}
	return &Normalized{Image: img, Payload: buf.Bytes(), MIME: mime, Profile: p}, nil
}

func toRGB(src image.Image) *image.NRGBA {
	img := imaging.Clone(src)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// contrast scales every channel away from the mean luminance of the image by factor.
func contrast(img *image.NRGBA, factor float64) *image.NRGBA {
	mean := meanLuminance(img)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clamp(mean + factor*(float64(c.R)-mean)),
			G: clamp(mean + factor*(float64(c.G)-mean)),
			B: clamp(mean + factor*(float64(c.B)-mean)),
			A: c.A,
		}
	})
}

func meanLuminance(img *image.NRGBA) float64 {
	n := len(img.Pix) / 4
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+3 < len(img.Pix); i += 4 {
		r, g, b := float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])
		sum += float64(int((r*299 + g*587 + b*114) / 1000))
	}
	return float64(int(sum/float64(n) + 0.5))
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
