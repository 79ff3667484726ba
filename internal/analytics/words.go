package analytics

import (
	"sort"
	"strings"

	"github.com/TobiSchelling/expedanalysis/internal/reviews"
)

// DefaultCommonWords is how many words the diagnosis sentence names.
const DefaultCommonWords = 5

// WordCount is a word with its frequency across a review set.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordWeight is a word-cloud entry; Weight is Count relative to the most
// frequent word, in (0,1].
type WordWeight struct {
	Word   string  `json:"word"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

// CorpusText joins all processed texts with single spaces. It is the
// word-cloud input and is empty for an empty set.
func CorpusText(set []reviews.Review) string {
	parts := make([]string, len(set))
	for i, r := range set {
		parts[i] = r.ProcessedReviews
	}
	return strings.Join(parts, " ")
}

// WordFrequencies counts whitespace-separated words, most frequent first
// with ties in first-seen order.
func WordFrequencies(set []reviews.Review) []WordCount {
	pos := make(map[string]int)
	counts := make([]WordCount, 0)
	for _, r := range set {
		for _, w := range strings.Fields(r.ProcessedReviews) {
			if i, ok := pos[w]; ok {
				counts[i].Count++
				continue
			}
			pos[w] = len(counts)
			counts = append(counts, WordCount{Word: w, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

// CommonWords returns the k most frequent words.
func CommonWords(set []reviews.Review, k int) []string {
	if k <= 0 {
		k = DefaultCommonWords
	}
	freq := WordFrequencies(set)
	if len(freq) > k {
		freq = freq[:k]
	}
	words := make([]string, len(freq))
	for i, wc := range freq {
		words[i] = wc.Word
	}
	return words
}

// WordCloud returns up to limit weighted words for rendering.
func WordCloud(set []reviews.Review, limit int) []WordWeight {
	freq := WordFrequencies(set)
	if limit > 0 && len(freq) > limit {
		freq = freq[:limit]
	}
	out := make([]WordWeight, len(freq))
	if len(freq) == 0 {
		return out
	}
	top := float64(freq[0].Count)
	for i, wc := range freq {
		out[i] = WordWeight{Word: wc.Word, Count: wc.Count, Weight: float64(wc.Count) / top}
	}
	return out
}

// JoinWords renders words as "a, b, c <conjunction> d". A single word is
// returned as is; no words yield "".
func JoinWords(words []string, conjunction string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	}
	last := len(words) - 1
	return strings.Join(words[:last], ", ") + " " + conjunction + " " + words[last]
}
