package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() map[string]string {
	return map[string]string{
		ColDate:            "1862-03-15",
		ColStartCountry:    "USA",
		ColEndCountry:      "France",
		ColStartLat:        "38.9",
		ColStartLon:        "-77.0",
		ColEndLat:          "48.9",
		ColEndLon:          "2.4",
		ColNumberOfLetters: "2",
	}
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"date", ColDate},
		{"start.country", ColStartCountry},
		{"Start_Country", ColStartCountry},
		{" end country ", ColEndCountry},
		{"end-latitude", ColEndLat},
		{"number.of.letters", ColNumberOfLetters},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColumn(tt.in))
		})
	}
}

func TestParseRecord(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		rec, err := ParseRecord(2, validFields())

		require.NoError(t, err)
		assert.Equal(t, 2, rec.Line)
		assert.Equal(t, time.Date(1862, time.March, 15, 0, 0, 0, 0, time.UTC), rec.Date)
		assert.Equal(t, "USA", rec.StartCountry)
		assert.Equal(t, "France", rec.EndCountry)
		require.True(t, rec.HasStart())
		require.True(t, rec.HasEnd())
		assert.Equal(t, 38.9, *rec.StartLat)
		assert.Equal(t, 2.4, *rec.EndLon)
		assert.Equal(t, 2, rec.NumberOfLetters)
	})

	t.Run("slash date", func(t *testing.T) {
		f := validFields()
		f[ColDate] = "1862/03/15"
		rec, err := ParseRecord(2, f)

		require.NoError(t, err)
		assert.Equal(t, 15, rec.Date.Day())
	})

	t.Run("coordinates optional", func(t *testing.T) {
		f := validFields()
		f[ColStartLat] = ""
		f[ColEndLon] = "NA"
		rec, err := ParseRecord(3, f)

		require.NoError(t, err)
		assert.False(t, rec.HasStart())
		assert.False(t, rec.HasEnd())
	})

	t.Run("zero letters allowed", func(t *testing.T) {
		f := validFields()
		f[ColNumberOfLetters] = "0"
		rec, err := ParseRecord(2, f)

		require.NoError(t, err)
		assert.Equal(t, 0, rec.NumberOfLetters)
	})
}

func TestParseRecord_Errors(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		value  string
		reason string
	}{
		{"missing date", ColDate, "", "missing value"},
		{"bad date", ColDate, "1862-02-30", "not a calendar date"},
		{"garbage date", ColDate, "March 1862", "not a calendar date"},
		{"missing start", ColStartCountry, " ", "missing value"},
		{"NA end", ColEndCountry, "NA", "missing value"},
		{"bad latitude", ColEndLat, "north", "not a number"},
		{"NaN latitude", ColEndLat, "NaN", "not a finite number"},
		{"infinite longitude", ColStartLon, "-Inf", "not a finite number"},
		{"latitude above pole", ColStartLat, "90.5", "outside [-90, 90]"},
		{"longitude past antimeridian", ColEndLon, "-180.01", "outside [-180, 180]"},
		{"missing letters", ColNumberOfLetters, "", "missing value"},
		{"fractional letters", ColNumberOfLetters, "1.5", "not an integer"},
		{"negative letters", ColNumberOfLetters, "-1", "negative count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			f[tt.field] = tt.value
			_, err := ParseRecord(7, f)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDataError)

			var dataErr *DataError
			require.True(t, errors.As(err, &dataErr))
			assert.Equal(t, 7, dataErr.Line)
			assert.Equal(t, tt.field, dataErr.Field)
			assert.Equal(t, tt.reason, dataErr.Reason)
			assert.Contains(t, err.Error(), "line 7")
		})
	}
}

func TestParseRecord_CoordinateBounds(t *testing.T) {
	f := validFields()
	f[ColStartLat] = "-90"
	f[ColStartLon] = "180"
	f[ColEndLat] = "90"
	f[ColEndLon] = "-180"

	rec, err := ParseRecord(2, f)

	require.NoError(t, err)
	assert.Equal(t, -90.0, *rec.StartLat)
	assert.Equal(t, 180.0, *rec.StartLon)
	assert.Equal(t, 90.0, *rec.EndLat)
	assert.Equal(t, -180.0, *rec.EndLon)
}
