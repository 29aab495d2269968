package scoring

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order; the first successful parse wins.
// Day-first layouts come before month-first, so an ambiguous date like
// 03/04/2024 resolves as 3 April.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTimestamp parses a transaction timestamp against the accepted layout
// list. Returns false when no layout matches; callers treat that as a missing
// timestamp rather than an error.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
