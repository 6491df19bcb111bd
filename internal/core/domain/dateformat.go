package domain

import (
	"strings"
	"time"
)

// Document date formats are stored in the token syntax the web client uses
// ("yyyy-MM-dd hh:mm a"). They are translated to a Go reference layout before
// formatting. Longer tokens must be replaced before their prefixes.
var dateTokenReplacer = strings.NewReplacer(
	"yyyy", "2006",
	"yy", "06",
	"MMMM", "January",
	"MMM", "Jan",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"hh", "03",
	"mm", "04",
	"ss", "05",
	"a", "PM",
)

// FormatDocumentDate renders t in the document's timezone using its
// configured date format. Unknown timezones fall back to UTC.
func FormatDocumentDate(t time.Time, meta DocumentMeta) string {
	loc, err := time.LoadLocation(meta.EffectiveTimezone())
	if err != nil {
		loc = time.UTC
	}
	layout := dateTokenReplacer.Replace(meta.EffectiveDateFormat())
	return t.In(loc).Format(layout)
}
