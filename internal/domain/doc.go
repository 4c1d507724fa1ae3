// Package domain models historical letter journeys and the derived tables
// charted from them.
//
// # Input
//
// Each row of the journeys table records a batch of letters sent from a
// start country to an end country on one day:
//
//	date,start.country,end.country,start.latitude,start.longitude,end.latitude,end.longitude,number.of.letters
//	1862-03-15,USA,France,38.9,-77.0,48.9,2.4,2
//
// Column names are matched after normalization, so "." "_" "-" and spaces
// are interchangeable. Coordinates may be empty or "NA"; every other field
// is required. See [ParseRecord].
//
// # Derived tables
//
// Calendar buckets (see [BucketCalendar]) place each journey on a calendar
// heatmap:
//
//	year         calendar year of the date
//	month_label  Jan..Dec
//	week_of_year ISO-8601 week number, 1..53 (Monday-start weeks)
//	week_of_month ceil(day/7), 1..5; days 29-31 always fall in week 5
//	weekday_label Mon..Sun, ordered as [WeekdayOrder]
//
// Note that January 1-3 may carry week_of_year 52 or 53 (the ISO week of
// the previous year) while year stays the calendar year.
//
// Pair tallies (see [TallyPairs]) count journeys per ordered
// (start, end) pair, labelled "<start> -> <end>". The tally is an unordered
// set; [SortPairs] produces ranked views.
//
// Destination shares (see [DestinationShares]) give each end country's
// fraction of all letters and of all journeys, in long form. [Gather] and
// [Spread] convert between the long and wide forms.
//
// # Errors
//
// Malformed or missing fields produce a [*DataError] carrying the source
// line. Normalizing a measure whose grand total is zero produces a
// [*DivisionByZeroError]. Rows are never dropped silently.
package domain
