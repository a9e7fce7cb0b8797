package dimension

import (
	"regexp"
	"strings"
)

var wordRegEx = regexp.MustCompile(`[a-zA-Z0-9_']+`)

// Tokenize lowercases text and extracts its words in order.
// Used both by the lexical scorers and by word token explosion.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return wordRegEx.FindAllString(strings.ToLower(text), -1)
}
