// Package ocr wraps the Tesseract OCR engine behind a narrow contract so
// that extraction can run with fakes when no OCR installation is present.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine recognizes text in a raster image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Config carries the Tesseract settings. All values are explicit; nothing is
// resolved from ambient global state.
type Config struct {
	Languages      []string
	TessdataPrefix string // empty means the system default data directory
}

// Tesseract is an Engine backed by gosseract.
type Tesseract struct {
	cfg Config
}

// NewTesseract probes the Tesseract installation once and returns the
// engine, or an error when no usable installation is found. Callers treat
// the error as "OCR unavailable" rather than a fatal condition.
func NewTesseract(cfg Config) (*Tesseract, error) {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("probe tesseract: %w", err)
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("probe tesseract: no trained language data installed")
	}
	return &Tesseract{cfg: cfg}, nil
}

// Recognize runs OCR on the image and returns the trimmed recognized text,
// which may be empty.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	c := gosseract.NewClient()
	defer c.Close()

	if t.cfg.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(t.cfg.TessdataPrefix); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(t.cfg.Languages) > 0 {
		if err := c.SetLanguage(t.cfg.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
