package extraction

import "strings"

var (
	totalKeywords = []string{
		"total",
		"grand total",
		"amount payable",
		"net total",
		"invoice total",
		"amount due",
	}
	subtotalKeywords = []string{
		"subtotal",
		"sub total",
		"sub-total",
	}
)

// Totals holds the keyword-tagged amounts found on one page. InvoiceTotal
// is taken from the last total line; Subtotals keeps every subtotal line in
// page order.
type Totals struct {
	InvoiceTotal *float64  `json:"invoice_total"`
	Subtotals    []float64 `json:"subtotals"`
}

// DetectTotals scans lines for total and subtotal keywords. A line can feed
// both.
func DetectTotals(lines []Line) Totals {
	totals := Totals{Subtotals: []float64{}}
	for _, line := range lines {
		lower := strings.ToLower(line.Text)
		isTotal := containsAny(lower, totalKeywords)
		isSubtotal := containsAny(lower, subtotalKeywords)
		if !isTotal && !isSubtotal {
			continue
		}

		amount, ok := ParseAmount(line.Text)
		if !ok {
			continue
		}
		if isTotal {
			total := amount
			totals.InvoiceTotal = &total
		}
		if isSubtotal {
			totals.Subtotals = append(totals.Subtotals, amount)
		}
	}
	return totals
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
