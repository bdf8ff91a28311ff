package output

import (
	"fmt"
	"unicode/utf8"
)

// CharsPerToken is the approximate character-to-token ratio for
// code-heavy text.
const CharsPerToken = 4.0

// DefaultBudget is the token budget assumed when a caller gives none.
const DefaultBudget = 32000

// EstimateTokens returns an approximate token count for text.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := float64(utf8.RuneCountInString(text)) / CharsPerToken
	return int(tokens + 0.5)
}

// FormatTokenCount formats a token count for display.
// Counts >= 1000 are formatted as "X.Xk".
func FormatTokenCount(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}

// Fits reports whether text stays within budget tokens. A non-positive
// budget always fits.
func Fits(text string, budget int) bool {
	return budget <= 0 || EstimateTokens(text) <= budget
}
