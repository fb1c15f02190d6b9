// Package tesseract recognizes page words with a local Tesseract install.
package tesseract

import (
	"context"
	"fmt"
	"math"

	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/bill-extractor/internal/extraction"
)

// Tesseract implements scanning.Recognizer. A gosseract client is not safe
// for concurrent use, so each page gets its own.
type Tesseract struct {
	languages []string
}

// New creates a Tesseract recognizer for the given languages (default "eng").
func New(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{languages: languages}
}

// Recognize runs word-level OCR over a page image
func (t *Tesseract) Recognize(ctx context.Context, page []byte) ([]extraction.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return nil, fmt.Errorf("setting language: %w", err)
	}
	if err := client.SetImageFromBytes(page); err != nil {
		return nil, fmt.Errorf("setting image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("reading word boxes: %w", err)
	}
	return toTokens(boxes), nil
}

// Close is a no-op; clients are released after every page.
func (t *Tesseract) Close() error {
	return nil
}

func toTokens(boxes []gosseract.BoundingBox) []extraction.Token {
	tokens := make([]extraction.Token, 0, len(boxes))
	for _, b := range boxes {
		tokens = append(tokens, extraction.Token{
			Text: b.Word,
			BBox: extraction.BBox{
				Left:   b.Box.Min.X,
				Top:    b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
			Confidence: confidence(b.Confidence),
		})
	}
	return extraction.CleanTokens(tokens)
}

func confidence(c float64) int {
	if c < 0 || math.IsNaN(c) {
		return extraction.UnknownConfidence
	}
	return int(math.Round(c))
}
