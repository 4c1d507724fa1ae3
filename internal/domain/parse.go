package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical column names. Input headers are normalized onto these, so
// "start.country", "Start_Country" and "start country" all match.
const (
	ColDate            = "date"
	ColStartCountry    = "start_country"
	ColEndCountry      = "end_country"
	ColStartLat        = "start_latitude"
	ColStartLon        = "start_longitude"
	ColEndLat          = "end_latitude"
	ColEndLon          = "end_longitude"
	ColNumberOfLetters = "number_of_letters"
)

// RequiredColumns must be present in every input header.
var RequiredColumns = []string{ColDate, ColStartCountry, ColEndCountry, ColNumberOfLetters}

// Coordinate bounds in degrees.
const (
	maxLatitude  = 90
	maxLongitude = 180
)

var dateLayouts = []string{"2006-01-02", "2006/01/02"}

// NormalizeColumn maps a header cell onto its canonical column name.
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(".", "_", " ", "_", "-", "_").Replace(name)
}

// ParseRecord builds a JourneyRecord from one row keyed by canonical column
// name. Coordinates are optional; every other field is required.
func ParseRecord(line int, fields map[string]string) (JourneyRecord, error) {
	rec := JourneyRecord{Line: line}

	date, err := parseDate(line, fields[ColDate])
	if err != nil {
		return JourneyRecord{}, err
	}
	rec.Date = date

	if rec.StartCountry, err = requireString(line, ColStartCountry, fields[ColStartCountry]); err != nil {
		return JourneyRecord{}, err
	}
	if rec.EndCountry, err = requireString(line, ColEndCountry, fields[ColEndCountry]); err != nil {
		return JourneyRecord{}, err
	}

	coords := []struct {
		col   string
		limit float64
		dst   **float64
	}{
		{ColStartLat, maxLatitude, &rec.StartLat},
		{ColStartLon, maxLongitude, &rec.StartLon},
		{ColEndLat, maxLatitude, &rec.EndLat},
		{ColEndLon, maxLongitude, &rec.EndLon},
	}
	for _, c := range coords {
		v, err := parseOptionalCoord(line, c.col, fields[c.col], c.limit)
		if err != nil {
			return JourneyRecord{}, err
		}
		*c.dst = v
	}

	raw := strings.TrimSpace(fields[ColNumberOfLetters])
	if raw == "" {
		return JourneyRecord{}, &DataError{Line: line, Field: ColNumberOfLetters, Reason: "missing value"}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return JourneyRecord{}, &DataError{Line: line, Field: ColNumberOfLetters, Value: raw, Reason: "not an integer"}
	}
	if n < 0 {
		return JourneyRecord{}, &DataError{Line: line, Field: ColNumberOfLetters, Value: raw, Reason: "negative count"}
	}
	rec.NumberOfLetters = n

	return rec, nil
}

func parseDate(line int, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &DataError{Line: line, Field: ColDate, Reason: "missing value"}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DataError{Line: line, Field: ColDate, Value: raw, Reason: "not a calendar date"}
}

func requireString(line int, col, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "NA") {
		return "", &DataError{Line: line, Field: col, Reason: "missing value"}
	}
	return v, nil
}

// parseOptionalCoord returns nil for empty or "NA" cells. Present values
// must be finite and within [-limit, limit] degrees.
func parseOptionalCoord(line int, col, raw string, limit float64) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "NA") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &DataError{Line: line, Field: col, Value: raw, Reason: "not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &DataError{Line: line, Field: col, Value: raw, Reason: "not a finite number"}
	}
	if v < -limit || v > limit {
		return nil, &DataError{Line: line, Field: col, Value: raw, Reason: fmt.Sprintf("outside [-%g, %g]", limit, limit)}
	}
	return &v, nil
}
