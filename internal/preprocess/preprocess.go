// Package preprocess normalizes raw review text into the processed form
// the topic model was trained on.
package preprocess

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"mvdan.cc/xurls/v2"
)

// DefaultMaxInputBytes caps a single raw review.
const DefaultMaxInputBytes = 10000

// ErrMalformed marks input the preprocessor refuses to process.
var ErrMalformed = errors.New("malformed input")

var (
	urlPattern   = xurls.Relaxed()
	emailPattern = regexp.MustCompile(`\S+@\S+`)
	mentionLike  = regexp.MustCompile(`[@#]\w+`)
)

// Preprocessor lowercases, strips URLs and non-letters, and removes
// stopwords. Safe for concurrent use once constructed.
type Preprocessor struct {
	stopwords     map[string]struct{}
	maxInputBytes int
}

// New creates a Preprocessor with the built-in Indonesian stopwords plus
// extra. maxInputBytes <= 0 uses DefaultMaxInputBytes.
func New(extra []string, maxInputBytes int) *Preprocessor {
	if maxInputBytes <= 0 {
		maxInputBytes = DefaultMaxInputBytes
	}
	stops := make(map[string]struct{}, len(indonesianStopwords)+len(extra))
	for _, w := range indonesianStopwords {
		stops[w] = struct{}{}
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stops[w] = struct{}{}
		}
	}
	return &Preprocessor{stopwords: stops, maxInputBytes: maxInputBytes}
}

// Process returns the processed form of raw: space-separated lowercase
// tokens. Invalid UTF-8, NUL bytes and oversized input fail with
// ErrMalformed.
func (p *Preprocessor) Process(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", ErrMalformed)
	}
	if len(raw) > p.maxInputBytes {
		return "", fmt.Errorf("%w: text is %d bytes, limit is %d", ErrMalformed, len(raw), p.maxInputBytes)
	}
	if strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: text contains NUL bytes", ErrMalformed)
	}

	text := strings.ToLower(raw)
	text = emailPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, " ")
	text = mentionLike.ReplaceAllString(text, " ")

	var tokens []string
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, stop := p.stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return strings.Join(tokens, " "), nil
}

// Tokens splits processed text into model tokens.
func Tokens(processed string) []string {
	return strings.Fields(processed)
}
