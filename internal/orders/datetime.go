package orders

import (
	"strings"
	"time"
)

// Day-first layouts come after ISO ones; the business is in South America.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2/1/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3:04 pm",
	"3:04pm",
	"15.04",
}

// parseDate returns the calendar date in loc. full is true when the input
// carried its own time of day (RFC 3339).
func parseDate(value string, loc *time.Location) (date time.Time, full bool, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, false
	}
	if loc == nil {
		loc = time.Local
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.In(loc), true, true
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, false, true
		}
	}
	return time.Time{}, false, false
}

func parseClock(value string) (hour, minute, second int, ok bool) {
	value = strings.TrimSpace(value)
	for _, layout := range clockLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Hour(), parsed.Minute(), parsed.Second(), true
		}
	}
	return 0, 0, 0, false
}

// combineDateTime returns the zero time when the date is unparseable, and
// the start of the day when only the time of day is unparseable.
func combineDateTime(date, clock string, loc *time.Location) time.Time {
	day, full, ok := parseDate(date, loc)
	if !ok {
		return time.Time{}
	}
	if full && strings.TrimSpace(clock) == "" {
		return day
	}

	hour, minute, second, ok := parseClock(clock)
	if !ok {
		hour, minute, second = 0, 0, 0
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, day.Location())
}

// civilDay encodes a calendar date as yyyymmdd so bounds compare as ints.
func civilDay(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
