package domain

import "time"

// JourneyRecord is one row of the journeys table: a batch of letters sent
// from a start country to an end country on a given day.
type JourneyRecord struct {
	Line            int       `json:"line,omitempty"` // 1-based source line; the header is line 1
	Date            time.Time `json:"date"`
	StartCountry    string    `json:"start_country"`
	EndCountry      string    `json:"end_country"`
	StartLat        *float64  `json:"start_lat,omitempty"`
	StartLon        *float64  `json:"start_lon,omitempty"`
	EndLat          *float64  `json:"end_lat,omitempty"`
	EndLon          *float64  `json:"end_lon,omitempty"`
	NumberOfLetters int       `json:"number_of_letters"`
}

// HasStart reports whether both start coordinates are present.
func (r JourneyRecord) HasStart() bool { return r.StartLat != nil && r.StartLon != nil }

// HasEnd reports whether both end coordinates are present.
func (r JourneyRecord) HasEnd() bool { return r.EndLat != nil && r.EndLon != nil }

// CalendarBucket places one journey on a calendar-heatmap grid.
type CalendarBucket struct {
	Date            time.Time `json:"date"`
	Year            int       `json:"year"`
	MonthLabel      string    `json:"month_label"`
	WeekOfYear      int       `json:"week_of_year"`  // ISO-8601 week number
	WeekOfMonth     int       `json:"week_of_month"` // ceil(day/7), 1..5
	WeekdayLabel    string    `json:"weekday_label"` // Mon..Sun
	EndCountry      string    `json:"end_country"`
	NumberOfLetters int       `json:"number_of_letters"`
}

// PairTally counts journeys sharing a (start, end) country pair.
type PairTally struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Count int    `json:"count"`
	Label string `json:"label"`
}

// Measure names a per-destination quantity in the long share table.
type Measure string

const (
	MeasureTotalLetters  Measure = "total_letters"
	MeasureTotalJourneys Measure = "total_journeys"
)

// Measures lists the share measures in the order they are gathered.
var Measures = []Measure{MeasureTotalLetters, MeasureTotalJourneys}

// DestinationShare is one (destination, measure) row of the long share table.
type DestinationShare struct {
	EndCountry string  `json:"end_country"`
	Measure    Measure `json:"measure"`
	Value      float64 `json:"value"`
}

// DestinationTotals is the wide form of the share table: one row per
// destination with one column per measure.
type DestinationTotals struct {
	EndCountry    string  `json:"end_country"`
	TotalLetters  float64 `json:"total_letters"`
	TotalJourneys float64 `json:"total_journeys"`
}

// RegionCount is the number of journey end points inside a named region.
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// Point is a WGS-84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Snapshot holds every derived table computed from one read of the input.
// Snapshots are never mutated after they are built.
type Snapshot struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Records     int                `json:"records"`
	Calendar    []CalendarBucket   `json:"calendar"`
	Pairs       []PairTally        `json:"pairs"`
	Shares      []DestinationShare `json:"shares"`
	Regions     []RegionCount      `json:"regions,omitempty"`
}
