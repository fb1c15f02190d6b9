package extraction

import (
	"cmp"
	"slices"
	"strings"
)

// minLineTolerance is the smallest vertical offset, in pixels, at which two
// tokens are still considered to sit on the same line.
const minLineTolerance = 10

// openLine accumulates tokens for the line currently being built.
type openLine struct {
	tokens []Token
	box    BBox
}

func newOpenLine(t Token) *openLine {
	return &openLine{tokens: []Token{t}, box: t.BBox}
}

// accepts reports whether t belongs on this line.
func (l *openLine) accepts(t Token) bool {
	tolerance := max(minLineTolerance, l.box.Height/2)
	return abs(t.BBox.Top-l.box.Top) <= tolerance
}

func (l *openLine) add(t Token) {
	l.tokens = append(l.tokens, t)
	l.box = l.box.Union(t.BBox)
}

// close joins the member tokens left to right.
func (l *openLine) close() Line {
	members := slices.Clone(l.tokens)
	slices.SortStableFunc(members, func(a, b Token) int {
		return cmp.Compare(a.BBox.Left, b.BBox.Left)
	})
	texts := make([]string, len(members))
	for i, t := range members {
		texts[i] = t.Text
	}
	return Line{Text: strings.Join(texts, " "), BBox: l.box}
}

// AssembleLines clusters one page's tokens into lines ordered top to bottom.
// Tokens are visited sorted by (top, left); each either joins the open line
// or closes it and opens a new one.
func AssembleLines(tokens []Token) []Line {
	if len(tokens) == 0 {
		return []Line{}
	}

	sorted := slices.Clone(tokens)
	slices.SortStableFunc(sorted, func(a, b Token) int {
		if c := cmp.Compare(a.BBox.Top, b.BBox.Top); c != 0 {
			return c
		}
		return cmp.Compare(a.BBox.Left, b.BBox.Left)
	})

	lines := make([]Line, 0)
	current := newOpenLine(sorted[0])
	for _, t := range sorted[1:] {
		if current.accepts(t) {
			current.add(t)
			continue
		}
		lines = append(lines, current.close())
		current = newOpenLine(t)
	}
	return append(lines, current.close())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
