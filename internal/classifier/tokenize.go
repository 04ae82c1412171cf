package classifier

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into word tokens, keeping at most
// maxLength of them. Apostrophes stay inside words ("it's").
func Tokenize(text string, maxLength int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			tokens = append(tokens, f)
		}
	}

	if maxLength > 0 && len(tokens) > maxLength {
		tokens = tokens[:maxLength]
	}
	return tokens
}
