package domain

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleRecords() []JourneyRecord {
	return []JourneyRecord{
		{Line: 2, Date: day(1862, 3, 15), StartCountry: "USA", EndCountry: "France", NumberOfLetters: 2},
		{Line: 3, Date: day(1862, 3, 16), StartCountry: "USA", EndCountry: "France", NumberOfLetters: 1},
		{Line: 4, Date: day(1862, 3, 17), StartCountry: "UK", EndCountry: "France", NumberOfLetters: 5},
	}
}

func TestTallyPairs_Example(t *testing.T) {
	tallies, err := TallyPairs(exampleRecords())

	require.NoError(t, err)
	assert.Equal(t, []PairTally{
		{Start: "USA", End: "France", Count: 2, Label: "USA -> France"},
		{Start: "UK", End: "France", Count: 1, Label: "UK -> France"},
	}, tallies)
}

func TestTallyPairs_DirectionMatters(t *testing.T) {
	records := []JourneyRecord{
		{StartCountry: "USA", EndCountry: "France"},
		{StartCountry: "France", EndCountry: "USA"},
	}

	tallies, err := TallyPairs(records)

	require.NoError(t, err)
	assert.Len(t, tallies, 2)
}

func TestTallyPairs_CountsSumToInput(t *testing.T) {
	records := syntheticRecords(500)

	tallies, err := TallyPairs(records)
	require.NoError(t, err)

	total := 0
	for _, p := range tallies {
		total += p.Count
	}
	assert.Equal(t, len(records), total)
}

func TestTallyPairs_MissingField(t *testing.T) {
	tests := []struct {
		name  string
		rec   JourneyRecord
		field string
	}{
		{"missing start", JourneyRecord{Line: 9, EndCountry: "France"}, ColStartCountry},
		{"missing end", JourneyRecord{Line: 9, StartCountry: "USA"}, ColEndCountry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TallyPairs([]JourneyRecord{tt.rec})

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDataError)
			assert.Contains(t, err.Error(), tt.field)
			assert.Contains(t, err.Error(), "line 9")
		})
	}
}

func pair(start, end string, count int) PairTally {
	return PairTally{Start: start, End: end, Count: count, Label: PairLabel(start, end)}
}

func TestSortPairs(t *testing.T) {
	tallies := []PairTally{
		pair("b", "x", 3),
		pair("a", "x", 1),
		pair("c", "x", 3),
		pair("d", "x", 2),
	}
	original := slices.Clone(tallies)

	asc := SortPairs(tallies, Ascending)
	desc := SortPairs(tallies, Descending)

	assert.Equal(t, []string{"a -> x", "d -> x", "b -> x", "c -> x"}, labels(asc))
	assert.Equal(t, []string{"c -> x", "b -> x", "d -> x", "a -> x"}, labels(desc))
	assert.Equal(t, original, tallies, "sorting must not reorder the input")

	reversed := slices.Clone(desc)
	slices.Reverse(reversed)
	assert.Equal(t, asc, reversed)
	assert.ElementsMatch(t, asc, desc)
}

func TestSortPairs_CollidingLabels(t *testing.T) {
	// Country names containing the separator give two pairs one label.
	records := []JourneyRecord{
		{Line: 2, Date: day(1862, 3, 15), StartCountry: "A -> B", EndCountry: "C", NumberOfLetters: 1},
		{Line: 3, Date: day(1862, 3, 16), StartCountry: "A", EndCountry: "B -> C", NumberOfLetters: 1},
	}
	tallies, err := TallyPairs(records)
	require.NoError(t, err)
	require.Len(t, tallies, 2)
	require.Equal(t, tallies[0].Label, tallies[1].Label)

	for _, input := range [][]PairTally{tallies, {tallies[1], tallies[0]}} {
		asc := SortPairs(input, Ascending)
		desc := SortPairs(input, Descending)

		assert.Equal(t, "A", asc[0].Start)
		assert.Equal(t, "A -> B", asc[1].Start)
		reversed := slices.Clone(desc)
		slices.Reverse(reversed)
		assert.Equal(t, asc, reversed)
	}
}

func labels(ps []PairTally) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Label
	}
	return out
}

// syntheticRecords cycles through a fixed set of countries and dates.
func syntheticRecords(n int) []JourneyRecord {
	countries := []string{"USA", "UK", "France", "Germany", "Italy", "Spain", "Mexico"}
	records := make([]JourneyRecord, n)
	for i := range records {
		records[i] = JourneyRecord{
			Line:            i + 2,
			Date:            day(1860, 1, 1).AddDate(0, 0, i*3),
			StartCountry:    countries[i%len(countries)],
			EndCountry:      countries[(i*5+1)%len(countries)],
			NumberOfLetters: i%4 + 1,
		}
	}
	return records
}
