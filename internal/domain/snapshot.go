package domain

import "fmt"

// BuildSnapshot runs every aggregation sequentially over records and stamps
// the result with the package clock. The pipeline runs the same steps
// concurrently; this is the reference form used by tools and tests.
func BuildSnapshot(records []JourneyRecord) (Snapshot, error) {
	calendar, err := BucketCalendar(records)
	if err != nil {
		return Snapshot{}, fmt.Errorf("bucket calendar: %w", err)
	}
	pairs, err := TallyPairs(records)
	if err != nil {
		return Snapshot{}, fmt.Errorf("tally pairs: %w", err)
	}
	shares, err := DestinationShares(records)
	if err != nil {
		return Snapshot{}, fmt.Errorf("destination shares: %w", err)
	}
	return NewSnapshot(len(records), calendar, pairs, shares), nil
}

// NewSnapshot assembles derived tables into a Snapshot stamped with the
// current time.
func NewSnapshot(records int, calendar []CalendarBucket, pairs []PairTally, shares []DestinationShare) Snapshot {
	return Snapshot{
		GeneratedAt: clock.Now().UTC(),
		Records:     records,
		Calendar:    calendar,
		Pairs:       pairs,
		Shares:      shares,
	}
}

// EndPoints returns the end coordinates of every record that has them.
func EndPoints(records []JourneyRecord) []Point {
	points := make([]Point, 0, len(records))
	for _, rec := range records {
		if rec.HasEnd() {
			points = append(points, Point{Lat: *rec.EndLat, Lon: *rec.EndLon})
		}
	}
	return points
}
