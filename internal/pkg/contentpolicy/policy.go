// Package contentpolicy classifies free text against a prohibited-word ruleset.
package contentpolicy

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Classification is the verdict for a piece of text
type Classification struct {
	Blocked bool     `json:"blocked"`
	Matches []string `json:"matches,omitempty"`
}

// ContentPolicy decides whether user-supplied text may be stored
type ContentPolicy interface {
	Classify(text string) Classification
}

// leetMinLength is the shortest word that also gets a leetspeak variant
const leetMinLength = 6

var leetClasses = map[rune]string{
	'a': "[a4@]",
	'e': "[e3]",
	'i': "[i1!]",
	'l': "[l1]",
	'o': "[o0]",
	's': "[s5$]",
	't': "[t7]",
}

// WordListPolicy matches whole words from a ruleset. It is immutable after
// construction and safe for concurrent use.
type WordListPolicy struct {
	pattern *regexp.Regexp
	words   int
}

// NewWordListPolicy compiles the words of the given locales (all locales when none
// are given) into a single case-insensitive matcher.
func NewWordListPolicy(rs *Ruleset, locales ...string) (*WordListPolicy, error) {
	if rs == nil {
		return nil, errors.New("content ruleset is nil")
	}

	fold := cases.Fold()
	seen := make(map[string]struct{})
	var words []string
	for _, w := range rs.Words(locales...) {
		w = strings.TrimSpace(fold.String(norm.NFC.String(w)))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil, errors.New("content ruleset has no words for the selected locales")
	}

	// longer words first so the leftmost alternative is the longest candidate
	sort.Slice(words, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(words[i]), utf8.RuneCountInString(words[j])
		if li != lj {
			return li > lj
		}
		return words[i] < words[j]
	})

	alternatives := make([]string, len(words))
	for i, w := range words {
		alternatives[i] = wordPattern(w)
	}

	pattern, err := regexp.Compile(`(?i)(?:` + strings.Join(alternatives, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile content pattern: %w", err)
	}

	return &WordListPolicy{pattern: pattern, words: len(words)}, nil
}

// wordPattern returns the regexp for one word, with leetspeak classes for long,
// purely alphabetic words.
func wordPattern(word string) string {
	if utf8.RuneCountInString(word) < leetMinLength || strings.IndexFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
		return regexp.QuoteMeta(word)
	}

	var b strings.Builder
	for _, r := range word {
		if class, ok := leetClasses[r]; ok {
			b.WriteString(class)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}

// Size returns the number of distinct words compiled into the policy
func (p *WordListPolicy) Size() int {
	return p.words
}

// Classify implements ContentPolicy
func (p *WordListPolicy) Classify(text string) Classification {
	matches := p.ListMatches(text)
	return Classification{Blocked: len(matches) > 0, Matches: matches}
}

// IsProhibited reports whether text contains any prohibited word
func (p *WordListPolicy) IsProhibited(text string) bool {
	return len(p.spans(norm.NFC.String(text))) > 0
}

// ListMatches returns the distinct matched words as they appear in text
func (p *WordListPolicy) ListMatches(text string) []string {
	text = norm.NFC.String(text)

	var matches []string
	seen := make(map[string]struct{})
	for _, span := range p.spans(text) {
		m := text[span[0]:span[1]]
		key := strings.ToLower(m)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		matches = append(matches, m)
	}
	return matches
}

// Redact replaces every match with '*' of the same rune length
func (p *WordListPolicy) Redact(text string) string {
	text = norm.NFC.String(text)
	spans := p.spans(text)
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, span := range spans {
		b.WriteString(text[last:span[0]])
		b.WriteString(strings.Repeat("*", utf8.RuneCountInString(text[span[0]:span[1]])))
		last = span[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// spans finds the byte ranges of whole-word matches. RE2 has no look-behind, so word
// boundaries are checked on the runes around each candidate, and a rejected candidate
// resumes the scan one rune later.
func (p *WordListPolicy) spans(text string) [][2]int {
	var spans [][2]int
	pos := 0
	for pos < len(text) {
		loc := p.pattern.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		if end > start && isWordBoundary(text, start, end) {
			spans = append(spans, [2]int{start, end})
			pos = end
			continue
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return spans
}

func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
