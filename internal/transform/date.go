package transform

import (
	"fmt"
	"strings"
	"time"
)

// dateInputLayouts are the accepted raw date shapes, tried in order.
// Source systems in the field most often emit ISO dates, but legacy feeds
// still carry dotted and slashed forms.
var dateInputLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
	"20060102",
}

// parseDate parses a raw date string against the accepted input layouts
func parseDate(value string) (time.Time, error) {
	for _, layout := range dateInputLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date %q", value)
}

// goLayout translates a placeholder-style layout (DD, MM, YYYY, HH, mm, SS)
// into a Go time layout. Rule authors write placeholder layouts; Go reference
// times never appear in configuration.
func goLayout(layout string) string {
	r := strings.NewReplacer(
		"YYYY", "2006",
		"YY", "06",
		"MM", "01",
		"DD", "02",
		"HH", "15",
		"mm", "04",
		"SS", "05",
	)
	return r.Replace(layout)
}
