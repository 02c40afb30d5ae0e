// Package service contains the business logic for the back-office API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"strings"

	"golang.org/x/text/width"
)

// SearchTerms splits free text into the tokens every search ANDs together.
// Full-width characters are folded first so "ＡＢＣ　商事" and "abc 商事"
// produce the same terms. Blank input yields no terms.
func SearchTerms(text string) []string {
	return strings.Fields(width.Fold.String(text))
}
