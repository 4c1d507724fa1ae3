// Package chart renders snapshot tables as SVG charts with a grammar of
// graphics: a calendar heatmap, ranked origin-destination pairs, and
// destination shares per measure.
package chart

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	"github.com/couchcryptid/letter-journeys/internal/domain"
)

// Output file names inside the chart directory.
const (
	CalendarFile = "calendar.svg"
	PairsFile    = "pairs.svg"
	SharesFile   = "shares.svg"
)

// Writer implements pipeline.Loader by rendering charts into a directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a chart Writer that renders into dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

func (w *Writer) Name() string { return "chart" }

// Load renders every non-empty table. Each file is written to a temporary
// name and renamed, so readers never see a partial chart.
func (w *Writer) Load(_ context.Context, snap domain.Snapshot) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	charts := []struct {
		file string
		rows int
		plot func() (*gg.Plot, int, int)
	}{
		{CalendarFile, len(snap.Calendar), func() (*gg.Plot, int, int) { return calendarPlot(snap.Calendar) }},
		{PairsFile, len(snap.Pairs), func() (*gg.Plot, int, int) { return pairsPlot(snap.Pairs) }},
		{SharesFile, len(snap.Shares), func() (*gg.Plot, int, int) { return sharesPlot(snap.Shares) }},
	}
	for _, c := range charts {
		if c.rows == 0 {
			w.logger.Debug("chart skipped, table is empty", "file", c.file)
			continue
		}
		if err := w.render(c.file, c.plot); err != nil {
			return err
		}
	}
	w.logger.Debug("charts rendered", "dir", w.dir)
	return nil
}

func (w *Writer) render(file string, build func() (*gg.Plot, int, int)) (err error) {
	// go-gg reports malformed plots by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render %s: %v", file, r)
		}
	}()

	plot, width, height := build()
	var buf bytes.Buffer
	if err := plot.WriteSVG(&buf, width, height); err != nil {
		return fmt.Errorf("render %s: %w", file, err)
	}

	path := filepath.Join(w.dir, file)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

// calendarPlot builds a heatmap of letters per day: one panel per month
// (columns) and year (rows), week of month across, weekday down.
func calendarPlot(buckets []domain.CalendarBucket) (*gg.Plot, int, int) {
	type cell struct {
		year, month, week, weekday int
	}
	letters := make(map[cell]float64)
	var order []cell
	years := make(map[int]bool)
	months := make(map[int]bool)
	for _, b := range buckets {
		c := cell{b.Year, int(b.Date.Month()), b.WeekOfMonth, weekdayIndex(b.WeekdayLabel)}
		if _, ok := letters[c]; !ok {
			order = append(order, c)
		}
		letters[c] += float64(b.NumberOfLetters)
		years[c.year] = true
		months[c.month] = true
	}

	var (
		yearCol    = make([]string, len(order))
		monthCol   = make([]int, len(order))
		weekCol    = make([]int, len(order))
		weekdayCol = make([]int, len(order))
		letterCol  = make([]float64, len(order))
	)
	for i, c := range order {
		yearCol[i] = strconv.Itoa(c.year)
		monthCol[i] = c.month
		weekCol[i] = c.week
		weekdayCol[i] = c.weekday
		letterCol[i] = letters[c]
	}

	tab := new(table.Builder).
		Add("year", yearCol).
		Add("month", monthCol).
		Add("week of month", weekCol).
		Add("weekday (Mon=1)", weekdayCol).
		Add("letters", letterCol).
		Done()

	plot := gg.NewPlot(tab)
	plot.Add(gg.FacetY{Col: "year"}, gg.FacetX{Col: "month"})
	plot.Add(gg.LayerTiles{X: "week of month", Y: "weekday (Mon=1)", Fill: "letters"})
	plot.Add(gg.Title("Letters sent per day"))
	return plot, 180 * len(months), 200 * len(years)
}

// pairsPlot ranks origin-destination pairs by count, most frequent on top.
func pairsPlot(pairs []domain.PairTally) (*gg.Plot, int, int) {
	ranked := domain.SortPairs(pairs, domain.Descending)
	n := len(ranked)
	var (
		countCol = make([]int, n)
		rankCol  = make([]int, n)
		labelCol = make([]string, n)
	)
	for i, p := range ranked {
		countCol[i] = p.Count
		rankCol[i] = n - i
		labelCol[i] = p.Label
	}

	tab := new(table.Builder).
		Add("journeys", countCol).
		Add("rank", rankCol).
		Add("pair", labelCol).
		Done()

	plot := gg.NewPlot(tab)
	plot.SetScale("x", gg.NewLinearScaler().Include(0))
	plot.Add(gg.LayerPoints{X: "journeys", Y: "rank"})
	plot.Add(gg.LayerTags{X: "journeys", Y: "rank", Label: "pair"})
	plot.Add(gg.Title("Journeys per origin-destination pair"))
	return plot, 800, 120 + 24*n
}

// sharesPlot shows each destination's share of the grand total, one point
// per measure.
func sharesPlot(shares []domain.DestinationShare) (*gg.Plot, int, int) {
	var (
		countryCol = make([]string, len(shares))
		measureCol = make([]string, len(shares))
		valueCol   = make([]float64, len(shares))
	)
	countries := make(map[string]bool)
	for i, s := range shares {
		countryCol[i] = s.EndCountry
		measureCol[i] = string(s.Measure)
		valueCol[i] = s.Value
		countries[s.EndCountry] = true
	}

	tab := new(table.Builder).
		Add("destination", countryCol).
		Add("measure", measureCol).
		Add("share", valueCol).
		Done()

	plot := gg.NewPlot(tab)
	plot.SetScale("y", gg.NewLinearScaler().Include(0))
	plot.Add(gg.LayerPoints{X: "destination", Y: "share", Color: "measure"})
	plot.Add(gg.Title("Destination share of letters and journeys"))
	return plot, 200 + 60*len(countries), 400
}

func weekdayIndex(label string) int {
	for i, l := range domain.WeekdayOrder {
		if l == label {
			return i + 1
		}
	}
	return 0
}
