package extraction

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/unicode/norm"
)

// TokenSortRatio scores how alike two names are on a 0-100 scale,
// ignoring word order, case and punctuation.
func TokenSortRatio(a, b string) int {
	sa := sortedTokens(a)
	sb := sortedTokens(b)
	if sa == "" || sb == "" {
		return 0
	}
	if sa == sb {
		return 100
	}
	total := utf8.RuneCountInString(sa) + utf8.RuneCountInString(sb)
	common := edlib.LCS(sa, sb)
	return int(math.Round(200 * float64(common) / float64(total)))
}

func sortedTokens(s string) string {
	tokens := nameTokens(s)
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

// nameTokens lowercases s and splits it into runs of letters or runs of
// digits, so "1.5ltr" and "1.5 Ltr" both yield "1", "5", "ltr".
func nameTokens(s string) []string {
	s = strings.ToLower(norm.NFKC.String(s))

	var (
		tokens  []string
		current []rune
		digits  bool
	)
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}

	for _, r := range s {
		isDigit := unicode.IsDigit(r)
		if !isDigit && !unicode.IsLetter(r) {
			flush()
			continue
		}
		if len(current) > 0 && isDigit != digits {
			flush()
		}
		current = append(current, r)
		digits = isDigit
	}
	flush()
	return tokens
}
