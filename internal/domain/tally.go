package domain

import (
	"cmp"
	"slices"
)

// SortOrder selects the ranking direction of a pair view.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// PairLabel is the categorical axis key for a (start, end) pair.
func PairLabel(start, end string) string {
	return start + " -> " + end
}

// TallyPairs groups records by (start, end) country and counts them. The
// result is an unordered set, returned in first-seen order; use SortPairs
// for a ranked view.
func TallyPairs(records []JourneyRecord) ([]PairTally, error) {
	type key struct{ start, end string }

	index := make(map[key]int)
	var tallies []PairTally
	for _, rec := range records {
		if rec.StartCountry == "" {
			return nil, &DataError{Line: rec.Line, Field: ColStartCountry, Reason: "missing value"}
		}
		if rec.EndCountry == "" {
			return nil, &DataError{Line: rec.Line, Field: ColEndCountry, Reason: "missing value"}
		}

		k := key{rec.StartCountry, rec.EndCountry}
		if i, ok := index[k]; ok {
			tallies[i].Count++
			continue
		}
		index[k] = len(tallies)
		tallies = append(tallies, PairTally{
			Start: rec.StartCountry,
			End:   rec.EndCountry,
			Count: 1,
			Label: PairLabel(rec.StartCountry, rec.EndCountry),
		})
	}
	return tallies, nil
}

// SortPairs returns a copy of tallies ranked by count. Ties are ordered by
// start then end country, which is a total order over distinct pairs, so the
// Descending view is exactly the reverse of the Ascending one. Labels are not
// used: "A -> B" to "C" and "A" to "B -> C" share one.
func SortPairs(tallies []PairTally, order SortOrder) []PairTally {
	out := slices.Clone(tallies)
	slices.SortFunc(out, func(a, b PairTally) int {
		c := cmp.Or(
			cmp.Compare(a.Count, b.Count),
			cmp.Compare(a.Start, b.Start),
			cmp.Compare(a.End, b.End),
		)
		if order == Descending {
			return -c
		}
		return c
	})
	return out
}
