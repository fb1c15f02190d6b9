package extraction

import "github.com/shopspring/decimal"

// Status is the outcome of comparing summed items with the invoice total.
type Status string

const (
	StatusMatch    Status = "MATCH"
	StatusMismatch Status = "MISMATCH"
	StatusUnknown  Status = "UNKNOWN"
)

// Reconciliation is the invoice total minus the item total, and its status.
type Reconciliation struct {
	Difference *float64 `json:"difference"`
	Status     Status   `json:"status"`
}

// Reconcile compares finalTotal with invoiceTotal. A nil invoiceTotal gives
// StatusUnknown with no difference.
func Reconcile(finalTotal float64, invoiceTotal *float64) Reconciliation {
	if invoiceTotal == nil {
		return Reconciliation{Status: StatusUnknown}
	}

	diff := decimal.NewFromFloat(*invoiceTotal).Sub(decimal.NewFromFloat(finalTotal)).Round(2)
	difference := diff.InexactFloat64()

	status := StatusMismatch
	if diff.Abs().LessThan(sameAmountTolerance) {
		status = StatusMatch
	}
	return Reconciliation{Difference: &difference, Status: status}
}
