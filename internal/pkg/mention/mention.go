// Package mention extracts @name tokens from free text.
package mention

import (
	"regexp"
	"strings"
)

// MaxPerText bounds how many distinct mentions one text can trigger
const MaxPerText = 10

var mentionPattern = regexp.MustCompile(`(?:^|[\s(\[{"'])@([\p{L}\p{N}_.\-]+)`)

// Extract returns the distinct mention tokens in order of first appearance,
// lower-cased and without the leading '@'. An '@' inside a word, as in an email
// address, is not a mention.
func Extract(text string) []string {
	found := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(found) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(found))
	tokens := make([]string, 0, len(found))
	for _, m := range found {
		token := strings.ToLower(strings.TrimRight(m[1], ".-"))
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
		if len(tokens) == MaxPerText {
			break
		}
	}
	return tokens
}
