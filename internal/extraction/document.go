package extraction

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultPageType labels every page of the output.
const DefaultPageType = "Bill Detail"

// BillItem is an item as reported to callers, rounded to two decimals.
type BillItem struct {
	ItemName     string   `json:"item_name"`
	ItemAmount   float64  `json:"item_amount"`
	ItemRate     *float64 `json:"item_rate"`
	ItemQuantity *float64 `json:"item_quantity"`
}

// PageLineItems lists the kept items of one page.
type PageLineItems struct {
	PageNo    string     `json:"page_no"`
	PageType  string     `json:"page_type"`
	BillItems []BillItem `json:"bill_items"`
}

// Result is the document-level extraction output.
type Result struct {
	PagewiseLineItems    []PageLineItems `json:"pagewise_line_items"`
	TotalItemCount       int             `json:"total_item_count"`
	FinalTotalExtracted  float64         `json:"final_total_extracted"`
	DetectedInvoiceTotal *float64        `json:"detected_invoice_total"`
	Reconciliation       Reconciliation  `json:"reconciliation"`
}

// PageResult is everything derived from one page's tokens.
type PageResult struct {
	Lines  []Line `json:"lines"`
	Items  []Item `json:"items"`
	Totals Totals `json:"totals"`
}

// Extractor runs the per-page pipeline and aggregates pages into a Result.
type Extractor struct {
	Deduplicator Deduplicator
	PageType     string
}

// NewExtractor returns an Extractor with default thresholds.
func NewExtractor() Extractor {
	return Extractor{
		Deduplicator: NewDeduplicator(),
		PageType:     DefaultPageType,
	}
}

// ExtractPage clusters tokens into lines, then derives the page's kept items
// and totals.
func (e Extractor) ExtractPage(tokens []Token) PageResult {
	lines := AssembleLines(CleanTokens(tokens))
	return PageResult{
		Lines:  lines,
		Items:  e.Deduplicator.Dedupe(BuildCandidates(lines)),
		Totals: DetectTotals(lines),
	}
}

// Extract runs ExtractPage on every page, in order, and aggregates.
func (e Extractor) Extract(pages [][]Token) Result {
	results := make([]PageResult, len(pages))
	for i, tokens := range pages {
		results[i] = e.ExtractPage(tokens)
	}
	return e.Aggregate(results)
}

// Aggregate sums kept items across pages and reconciles the sum against the
// last invoice total found in page order. Items are not deduplicated across
// pages.
func (e Extractor) Aggregate(pages []PageResult) Result {
	result := Result{PagewiseLineItems: make([]PageLineItems, 0, len(pages))}

	sum := decimal.Zero
	for i, page := range pages {
		billItems := make([]BillItem, 0, len(page.Items))
		for _, item := range page.Items {
			billItems = append(billItems, BillItem{
				ItemName:     item.Name,
				ItemAmount:   round2(item.Amount),
				ItemRate:     roundPtr(item.Rate),
				ItemQuantity: roundPtr(item.Quantity),
			})
			sum = sum.Add(decimal.NewFromFloat(item.Amount))
		}
		result.PagewiseLineItems = append(result.PagewiseLineItems, PageLineItems{
			PageNo:    strconv.Itoa(i + 1),
			PageType:  e.pageType(),
			BillItems: billItems,
		})
		result.TotalItemCount += len(billItems)

		if page.Totals.InvoiceTotal != nil {
			total := *page.Totals.InvoiceTotal
			result.DetectedInvoiceTotal = &total
		}
	}

	result.FinalTotalExtracted = sum.Round(2).InexactFloat64()
	result.Reconciliation = Reconcile(result.FinalTotalExtracted, result.DetectedInvoiceTotal)
	return result
}

func (e Extractor) pageType() string {
	if e.PageType == "" {
		return DefaultPageType
	}
	return e.PageType
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}
