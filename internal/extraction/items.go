package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// quantityRatePattern matches "2 x 50.00" style quantity/rate pairs.
var quantityRatePattern = regexp.MustCompile(`([0-9]+)\s*[xX*]\s*([0-9]+\.[0-9]{1,2})`)

// BuildCandidate turns a line into a candidate item. It returns false when
// the line carries no amount.
func BuildCandidate(line Line) (Item, bool) {
	text := strings.TrimSpace(line.Text)
	amount, ok := ParseAmount(text)
	if !ok {
		return Item{}, false
	}

	item := Item{
		Name:   itemName(text),
		Amount: amount,
		BBox:   line.BBox,
	}

	if m := quantityRatePattern.FindStringSubmatch(text); m != nil {
		quantity, qErr := strconv.ParseFloat(m[1], 64)
		rate, rErr := strconv.ParseFloat(m[2], 64)
		if qErr == nil && rErr == nil {
			item.Quantity = &quantity
			item.Rate = &rate
		}
	}

	return item, true
}

// BuildCandidates runs BuildCandidate over lines, keeping line order.
func BuildCandidates(lines []Line) []Item {
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		if item, ok := BuildCandidate(line); ok {
			items = append(items, item)
		}
	}
	return items
}

// itemName removes the first amount from text. The full text is kept when
// nothing else remains.
func itemName(text string) string {
	loc := findAmount(text)
	if loc == nil {
		return text
	}
	name := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	if name == "" {
		return text
	}
	return name
}
