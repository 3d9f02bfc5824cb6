package analyzer

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var english = message.NewPrinter(language.English)

// FormatCount renders a count with thousands separators ("12,345").
func FormatCount(v float64) string {
	return english.Sprintf("%d", int64(v+0.5))
}

// FormatDollars renders a dollar amount with thousands separators
// ("$1,234").
func FormatDollars(v float64) string {
	return english.Sprintf("$%d", int64(v+0.5))
}
