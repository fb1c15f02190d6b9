package extraction

import "strings"

// UnknownConfidence marks a token whose engine did not report a confidence.
const UnknownConfidence = -1

// BBox is an axis-aligned box in page pixels.
type BBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the x coordinate just past the box.
func (b BBox) Right() int {
	return b.Left + b.Width
}

// Bottom returns the y coordinate just past the box.
func (b BBox) Bottom() int {
	return b.Top + b.Height
}

// Area returns width times height.
func (b BBox) Area() int {
	return b.Width * b.Height
}

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	left := min(b.Left, o.Left)
	top := min(b.Top, o.Top)
	right := max(b.Right(), o.Right())
	bottom := max(b.Bottom(), o.Bottom())
	return BBox{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Token is one recognized word as supplied by an OCR engine.
type Token struct {
	Text       string `json:"text"`
	BBox       BBox   `json:"bbox"`
	Confidence int    `json:"confidence"`
}

// Line is a reading-order cluster of tokens on the same row.
type Line struct {
	Text string `json:"text"`
	BBox BBox   `json:"bbox"`
}

// Item is a priced line item. Quantity and Rate are nil when the line
// carried no "qty x rate" pattern.
type Item struct {
	Name     string   `json:"name"`
	Amount   float64  `json:"amount"`
	Quantity *float64 `json:"quantity"`
	Rate     *float64 `json:"rate"`
	BBox     BBox     `json:"bbox"`
}

// CleanTokens drops tokens with blank text, trims the rest and clamps
// negative box dimensions to zero.
func CleanTokens(tokens []Token) []Token {
	cleaned := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		t.Text = strings.TrimSpace(t.Text)
		if t.Text == "" {
			continue
		}
		t.BBox.Width = max(t.BBox.Width, 0)
		t.BBox.Height = max(t.BBox.Height, 0)
		cleaned = append(cleaned, t)
	}
	return cleaned
}
