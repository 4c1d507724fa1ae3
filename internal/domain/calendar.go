package domain

import (
	"time"
)

// WeekdayOrder is the row order of the calendar grid. It starts on Monday
// to agree with the ISO-8601 week numbers in CalendarBucket.WeekOfYear.
var WeekdayOrder = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// MonthOrder is the facet order of the calendar grid.
var MonthOrder = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// BucketCalendar produces one CalendarBucket per record, in input order.
// A record without a date is reported as a *DataError, never skipped.
func BucketCalendar(records []JourneyRecord) ([]CalendarBucket, error) {
	buckets := make([]CalendarBucket, 0, len(records))
	for _, rec := range records {
		if rec.Date.IsZero() {
			return nil, &DataError{Line: rec.Line, Field: ColDate, Reason: "missing value"}
		}
		b := NewCalendarBucket(rec.Date)
		b.EndCountry = rec.EndCountry
		b.NumberOfLetters = rec.NumberOfLetters
		buckets = append(buckets, b)
	}
	return buckets, nil
}

// NewCalendarBucket derives the grid position of a single day.
func NewCalendarBucket(date time.Time) CalendarBucket {
	_, week := date.ISOWeek()
	return CalendarBucket{
		Date:         date,
		Year:         date.Year(),
		MonthLabel:   MonthOrder[date.Month()-1],
		WeekOfYear:   week,
		WeekOfMonth:  WeekOfMonth(date.Day()),
		WeekdayLabel: weekdayLabel(date.Weekday()),
	}
}

// WeekOfMonth is ceil(day/7). Days 29-31 land in a fifth week regardless of
// which weekday the month starts on; the grid layout depends on that.
func WeekOfMonth(day int) int {
	return (day + 6) / 7
}

func weekdayLabel(d time.Weekday) string {
	// time.Weekday counts from Sunday; WeekdayOrder starts on Monday.
	return WeekdayOrder[(int(d)+6)%7]
}

// FilterDateRange keeps records whose date falls within [from, to]. A zero
// bound leaves that side open. The input slice is not modified.
func FilterDateRange(records []JourneyRecord, from, to time.Time) []JourneyRecord {
	out := make([]JourneyRecord, 0, len(records))
	for _, rec := range records {
		if !from.IsZero() && rec.Date.Before(from) {
			continue
		}
		if !to.IsZero() && rec.Date.After(to) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
