package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/TobiSchelling/expedanalysis/internal/reviews"
)

// DefaultTopK is the n-gram table length used when k <= 0.
const DefaultTopK = 10

// NgramCount is one row of an n-gram table.
type NgramCount struct {
	Tokens []string `json:"tokens"`
	Count  int      `json:"count"`
}

// String joins the n-gram tokens with single spaces.
func (n NgramCount) String() string {
	return strings.Join(n.Tokens, " ")
}

// TopNgrams counts contiguous n-token windows over every review's
// processed text and returns the k most frequent, count descending with
// ties in order of first occurrence. Texts shorter than n tokens
// contribute nothing.
func TopNgrams(set []reviews.Review, n, k int) []NgramCount {
	if n <= 0 {
		return []NgramCount{}
	}
	if k <= 0 {
		k = DefaultTopK
	}

	pos := make(map[string]int)
	table := make([]NgramCount, 0)
	for _, r := range set {
		tokens := WordTokenize(r.ProcessedReviews)
		for i := 0; i+n <= len(tokens); i++ {
			window := tokens[i : i+n]
			key := strings.Join(window, "\x00")
			if j, ok := pos[key]; ok {
				table[j].Count++
				continue
			}
			pos[key] = len(table)
			table = append(table, NgramCount{
				Tokens: append([]string(nil), window...),
				Count:  1,
			})
		}
	}

	sort.SliceStable(table, func(i, j int) bool { return table[i].Count > table[j].Count })
	if len(table) > k {
		table = table[:k]
	}
	return table
}

// WordTokenize splits text into word and punctuation tokens. Words are
// runs of letters, digits and marks, keeping inner apostrophes, hyphens
// and dots between digits; each run of punctuation or symbols becomes
// its own token.
func WordTokenize(text string) []string {
	var tokens []string
	runes := []rune(text)
	var cur strings.Builder
	kind := 0 // 0 none, 1 word, 2 punctuation

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
		kind = 0
	}

	for i, r := range runes {
		switch {
		case unicode.IsSpace(r):
			flush()
		case isWordRune(r):
			if kind == 2 {
				flush()
			}
			kind = 1
			cur.WriteRune(r)
		case kind == 1 && isJoiner(r) && i+1 < len(runes) && joinsWord(r, runes[i-1], runes[i+1]):
			cur.WriteRune(r)
		default:
			if kind == 1 || (kind == 2 && !sameRun(runes[i-1], r)) {
				flush()
			}
			kind = 2
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-' || r == '.' || r == ','
}

// joinsWord reports whether a joiner between prev and next stays inside
// the word: hyphens and apostrophes between word runes, dots and commas
// between digits.
func joinsWord(r, prev, next rune) bool {
	switch r {
	case '.', ',':
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	default:
		return isWordRune(next)
	}
}

func sameRun(prev, r rune) bool {
	return prev == r
}
