package domain

import "fmt"

// DestinationShares groups records by end country and returns, for each
// destination, its share of all letters and of all journeys in long form:
// exactly one row per (destination, measure).
//
// An empty input yields an empty table. A zero grand total for either
// measure yields a *DivisionByZeroError.
func DestinationShares(records []JourneyRecord) ([]DestinationShare, error) {
	if len(records) == 0 {
		return []DestinationShare{}, nil
	}
	totals, err := SumDestinations(records)
	if err != nil {
		return nil, err
	}
	shares, err := NormalizeTotals(totals)
	if err != nil {
		return nil, err
	}
	return Gather(shares), nil
}

// SumDestinations returns the wide per-destination totals in first-seen
// order.
func SumDestinations(records []JourneyRecord) ([]DestinationTotals, error) {
	index := make(map[string]int)
	var totals []DestinationTotals
	for _, rec := range records {
		if rec.EndCountry == "" {
			return nil, &DataError{Line: rec.Line, Field: ColEndCountry, Reason: "missing value"}
		}
		i, ok := index[rec.EndCountry]
		if !ok {
			i = len(totals)
			index[rec.EndCountry] = i
			totals = append(totals, DestinationTotals{EndCountry: rec.EndCountry})
		}
		totals[i].TotalLetters += float64(rec.NumberOfLetters)
		totals[i].TotalJourneys++
	}
	return totals, nil
}

// NormalizeTotals divides each measure by its own grand total. The input is
// not modified.
func NormalizeTotals(totals []DestinationTotals) ([]DestinationTotals, error) {
	var letters, journeys float64
	for _, t := range totals {
		letters += t.TotalLetters
		journeys += t.TotalJourneys
	}
	if letters == 0 {
		return nil, &DivisionByZeroError{Measure: MeasureTotalLetters}
	}
	if journeys == 0 {
		return nil, &DivisionByZeroError{Measure: MeasureTotalJourneys}
	}

	out := make([]DestinationTotals, len(totals))
	for i, t := range totals {
		out[i] = DestinationTotals{
			EndCountry:    t.EndCountry,
			TotalLetters:  t.TotalLetters / letters,
			TotalJourneys: t.TotalJourneys / journeys,
		}
	}
	return out, nil
}

// Gather reshapes the wide table into long form, one row per destination
// and measure, preserving destination order and the Measures order.
func Gather(wide []DestinationTotals) []DestinationShare {
	long := make([]DestinationShare, 0, len(wide)*len(Measures))
	for _, w := range wide {
		for _, m := range Measures {
			long = append(long, DestinationShare{
				EndCountry: w.EndCountry,
				Measure:    m,
				Value:      w.value(m),
			})
		}
	}
	return long
}

// Spread reshapes the long table back into wide form. Every destination must
// carry each measure exactly once.
func Spread(long []DestinationShare) ([]DestinationTotals, error) {
	type seen struct{ letters, journeys bool }

	index := make(map[string]int)
	var wide []DestinationTotals
	var flags []seen
	for _, s := range long {
		i, ok := index[s.EndCountry]
		if !ok {
			i = len(wide)
			index[s.EndCountry] = i
			wide = append(wide, DestinationTotals{EndCountry: s.EndCountry})
			flags = append(flags, seen{})
		}
		switch s.Measure {
		case MeasureTotalLetters:
			if flags[i].letters {
				return nil, fmt.Errorf("spread %s: duplicate measure %s", s.EndCountry, s.Measure)
			}
			flags[i].letters = true
			wide[i].TotalLetters = s.Value
		case MeasureTotalJourneys:
			if flags[i].journeys {
				return nil, fmt.Errorf("spread %s: duplicate measure %s", s.EndCountry, s.Measure)
			}
			flags[i].journeys = true
			wide[i].TotalJourneys = s.Value
		default:
			return nil, fmt.Errorf("spread %s: unknown measure %q", s.EndCountry, s.Measure)
		}
	}
	for i, f := range flags {
		if !f.letters || !f.journeys {
			return nil, fmt.Errorf("spread %s: missing measure", wide[i].EndCountry)
		}
	}
	return wide, nil
}

// SumMeasure adds up the long-table values of one measure.
func SumMeasure(long []DestinationShare, m Measure) float64 {
	var sum float64
	for _, s := range long {
		if s.Measure == m {
			sum += s.Value
		}
	}
	return sum
}

func (t DestinationTotals) value(m Measure) float64 {
	if m == MeasureTotalLetters {
		return t.TotalLetters
	}
	return t.TotalJourneys
}
