package xero

import (
	"strings"
	"time"
)

// parseXeroDate decodes Xero's legacy JSON date token, e.g.
// "/Date(1672531200000+0000)/". The value is Unix milliseconds with an
// optional trailing zone offset; the offset is informational only, so the
// milliseconds are taken verbatim and the result is UTC. Extraction is by
// substring because the token is not a parseable date layout.
func parseXeroDate(s string) *time.Time {
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start < 0 || end <= start+1 {
		return nil
	}
	token := s[start+1 : end]

	// Strip a trailing +hhmm/-hhmm offset. A leading minus is a negative
	// epoch value, not an offset.
	if i := strings.IndexAny(token[1:], "+-"); i >= 0 {
		token = token[:i+1]
	}

	ms := int64(0)
	negative := false
	for i, r := range token {
		if i == 0 && r == '-' {
			negative = true
			continue
		}
		if r < '0' || r > '9' {
			return nil
		}
		ms = ms*10 + int64(r-'0')
	}
	if negative {
		ms = -ms
	}

	ts := time.UnixMilli(ms).UTC()
	return &ts
}

// xeroDateTime renders a timestamp as the DateTime(...) literal used in
// where filters.
func xeroDateTime(ts time.Time) string {
	ts = ts.UTC()
	return ts.Format("DateTime(2006, 01, 02, 15, 04, 05)")
}
