package bill

import (
	"time"

	"github.com/zombor/bill-extractor/internal/extraction"
)

// Extraction is a stored run of the pipeline over one document
type Extraction struct {
	ID                string              `json:"id"`
	Source            string              `json:"source,omitempty"` // URL the document was fetched from, empty for uploads
	Filename          string              `json:"filename"`
	ContentType       string              `json:"content_type"`
	PageCount         int                 `json:"page_count"`
	Result            extraction.Result   `json:"result"`
	PageTotals        []extraction.Totals `json:"page_totals"` // Totals detected on each page, in page order
	ProcessingSeconds float64             `json:"processing_time_seconds"`
	CreatedAt         time.Time           `json:"created_at"`
}
