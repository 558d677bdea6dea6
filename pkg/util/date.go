package util

import (
	"strings"
	"time"
)

// Longer tokens come first so "YYYY" is not consumed as two "YY".
var dateTokens = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"hh", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDateTpl formats t using a template with the placeholders YYYY, YY,
// MM, DD, hh, mm and ss. A zero time yields an empty string.
//
//	FormatDateTpl(t, "YYYY-MM-DD hh:mm") // "2023-11-10 00:00"
func FormatDateTpl(t time.Time, tpl string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTokens.Replace(tpl))
}
