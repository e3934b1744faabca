package models

import (
	"time"
)

// termOffsets maps recognized payment terms to the number of days between
// the start date and the due date. Terms are matched exactly after trimming.
var termOffsets = map[string]int{
	"Due on receipt": 0,
	"Net 15":         15,
	"Net 30":         30,
	"Net 60":         60,
	"Net 90":         90,
}

// TermDays returns the day offset for terms and whether terms is recognized.
func TermDays(terms string) (int, bool) {
	days, ok := termOffsets[terms]
	return days, ok
}

// dueFromTerms derives a due date. Absent or unrecognized terms make the
// invoice due on its start date.
func dueFromTerms(start time.Time, terms string) time.Time {
	days, ok := TermDays(terms)
	if !ok {
		return start
	}
	return start.AddDate(0, 0, days)
}
