package scanning

import (
	"context"

	"github.com/zombor/bill-extractor/internal/extraction"
)

// Recognizer reads the words off a single page image
type Recognizer interface {
	// Recognize returns the words on a PNG page image with pixel boxes
	Recognize(ctx context.Context, page []byte) ([]extraction.Token, error)
	// Close releases resources held by the recognizer
	Close() error
}
