package extraction

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/tidwall/rtree"
)

const (
	// DefaultIoUThreshold is the box overlap above which two equal-amount
	// items are the same line.
	DefaultIoUThreshold = 0.40
	// DefaultSimilarityThreshold is the name score above which two
	// near-equal-amount items are the same line.
	DefaultSimilarityThreshold = 90
)

var (
	sameAmountTolerance    = decimal.RequireFromString("0.01")
	similarAmountTolerance = decimal.RequireFromString("1.00")
)

// Deduplicator drops candidate items that repeat an earlier one on the same
// page. IoUThreshold must not be negative.
type Deduplicator struct {
	IoUThreshold        float64
	SimilarityThreshold int
}

// NewDeduplicator returns a Deduplicator with the default thresholds.
func NewDeduplicator() Deduplicator {
	return Deduplicator{
		IoUThreshold:        DefaultIoUThreshold,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Duplicate reports whether a and b describe the same billed line.
func (d Deduplicator) Duplicate(a, b Item) bool {
	return d.overlapping(a, b) || d.similar(a, b)
}

func (d Deduplicator) overlapping(a, b Item) bool {
	return amountsWithin(a.Amount, b.Amount, sameAmountTolerance) && IoU(a.BBox, b.BBox) > d.IoUThreshold
}

func (d Deduplicator) similar(a, b Item) bool {
	return amountsWithin(a.Amount, b.Amount, similarAmountTolerance) && TokenSortRatio(a.Name, b.Name) > d.SimilarityThreshold
}

// Dedupe keeps, in input order, every item that is not a duplicate of an
// item already kept. The first occurrence always wins.
//
// Kept boxes live in an R-tree so only intersecting boxes are tested for
// overlap, and kept items are bucketed by whole amount so only neighbouring
// buckets are tested for name similarity.
func (d Deduplicator) Dedupe(items []Item) []Item {
	kept := make([]Item, 0, len(items))
	buckets := make(map[int64][]int)
	var boxes rtree.RTreeG[int]

	for _, item := range items {
		if d.overlapsKept(item, kept, &boxes) || d.resemblesKept(item, kept, buckets) {
			continue
		}
		idx := len(kept)
		kept = append(kept, item)
		lo, hi := rectOf(item.BBox)
		boxes.Insert(lo, hi, idx)
		bucket := amountBucket(item.Amount)
		buckets[bucket] = append(buckets[bucket], idx)
	}
	return kept
}

func (d Deduplicator) overlapsKept(item Item, kept []Item, boxes *rtree.RTreeG[int]) bool {
	found := false
	lo, hi := rectOf(item.BBox)
	boxes.Search(lo, hi, func(_, _ [2]float64, idx int) bool {
		if d.overlapping(item, kept[idx]) {
			found = true
			return false
		}
		return true
	})
	return found
}

// resemblesKept checks the buckets that can hold an amount less than 1.00
// away from item's.
func (d Deduplicator) resemblesKept(item Item, kept []Item, buckets map[int64][]int) bool {
	bucket := amountBucket(item.Amount)
	for _, b := range [...]int64{bucket - 1, bucket, bucket + 1} {
		for _, idx := range buckets[b] {
			if d.similar(item, kept[idx]) {
				return true
			}
		}
	}
	return false
}

func amountBucket(amount float64) int64 {
	return int64(math.Floor(amount))
}

func rectOf(b BBox) (lo, hi [2]float64) {
	return [2]float64{float64(b.Left), float64(b.Top)}, [2]float64{float64(b.Right()), float64(b.Bottom())}
}

func amountsWithin(a, b float64, tolerance decimal.Decimal) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().LessThan(tolerance)
}

// IoU returns the intersection area of a and b over their union area. It is
// zero when the boxes do not overlap or either has no area.
func IoU(a, b BBox) float64 {
	if a.Area() == 0 || b.Area() == 0 {
		return 0
	}
	interW := min(a.Right(), b.Right()) - max(a.Left, b.Left)
	interH := min(a.Bottom(), b.Bottom()) - max(a.Top, b.Top)
	if interW <= 0 || interH <= 0 {
		return 0
	}
	inter := interW * interH
	return float64(inter) / float64(a.Area()+b.Area()-inter)
}
