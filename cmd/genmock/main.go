// Command genmock writes a deterministic synthetic journeys table and the
// snapshot the aggregation derives from it. Both files are reproducible for a
// given seed, so they can be checked in as fixtures and verified with
// cmd/validate.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/journeys.csv \
//	  -snapshot-out data/mock/journeys_snapshot.json \
//	  -rows 500 -seed 1862
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/letter-journeys/internal/adapter/csvfile"
	"github.com/couchcryptid/letter-journeys/internal/domain"
	"github.com/jonboulle/clockwork"
)

var startDate = time.Date(1861, time.January, 1, 0, 0, 0, 0, time.UTC)

// country is a journey endpoint with the coordinates of its capital.
type country struct {
	name     string
	lat, lon float64
	weight   int // relative popularity as an origin or destination
}

var countries = []country{
	{"USA", 38.9072, -77.0369, 8},
	{"UK", 51.5074, -0.1278, 6},
	{"France", 48.8566, 2.3522, 5},
	{"Germany", 52.5200, 13.4050, 3},
	{"Italy", 41.9028, 12.4964, 2},
	{"Spain", 40.4168, -3.7038, 2},
	{"Canada", 45.4215, -75.6972, 1},
	{"Mexico", 19.4326, -99.1332, 1},
}

var header = []string{
	"date", "start.country", "end.country",
	"start.latitude", "start.longitude", "end.latitude", "end.longitude",
	"number.of.letters",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the journeys CSV")
	snapshotOut := flag.String("snapshot-out", "", "optional output path for the derived snapshot JSON")
	rows := flag.Int("rows", 500, "number of journeys to generate")
	seed := flag.Uint64("seed", 1862, "random seed")
	naRate := flag.Float64("na-rate", 0.05, "fraction of rows with missing end coordinates")
	flag.Parse()

	if *out == "" || *rows < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flag -out, or -rows below 1")
	}

	// Fixed clock for a reproducible GeneratedAt.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	if err := writeCSV(*out, *rows, *seed, *naRate); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %d journeys to %s", *rows, *out)

	// Read the file back through the real reader so the snapshot reflects
	// exactly what the service would see.
	records, err := csvfile.NewReader(*out, slog.New(slog.NewTextHandler(io.Discard, nil))).Extract(context.Background())
	if err != nil {
		return fmt.Errorf("read back %s: %w", *out, err)
	}
	snap, err := domain.BuildSnapshot(records)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	if *snapshotOut != "" {
		if err := writeJSON(*snapshotOut, snap); err != nil {
			return fmt.Errorf("write %s: %w", *snapshotOut, err)
		}
		log.Printf("wrote snapshot to %s", *snapshotOut)
	}

	printStats(snap)
	return nil
}

func writeCSV(path string, n int, seed uint64, naRate float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for _, row := range generate(rng, n, naRate) {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// generate produces n rows in date order. Origin and destination always
// differ.
func generate(rng *rand.Rand, n int, naRate float64) [][]string {
	rows := make([][]string, 0, n)
	date := startDate
	for range n {
		date = date.AddDate(0, 0, rng.IntN(4))
		from := pick(rng)
		to := pick(rng)
		for to.name == from.name {
			to = pick(rng)
		}

		endLat, endLon := formatCoord(to.lat), formatCoord(to.lon)
		if rng.Float64() < naRate {
			endLat, endLon = "NA", "NA"
		}
		rows = append(rows, []string{
			date.Format(time.DateOnly),
			from.name,
			to.name,
			formatCoord(from.lat),
			formatCoord(from.lon),
			endLat,
			endLon,
			strconv.Itoa(1 + rng.IntN(6)),
		})
	}
	return rows
}

func pick(rng *rand.Rand) country {
	total := 0
	for _, c := range countries {
		total += c.weight
	}
	r := rng.IntN(total)
	for _, c := range countries {
		if r < c.weight {
			return c
		}
		r -= c.weight
	}
	return countries[len(countries)-1]
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(snap domain.Snapshot) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Records: %d\n", snap.Records)
	fmt.Printf("Distinct pairs: %d\n", len(snap.Pairs))

	top := domain.SortPairs(snap.Pairs, domain.Descending)
	if len(top) > 5 {
		top = top[:5]
	}
	fmt.Println("Top pairs:")
	for _, p := range top {
		fmt.Printf("  %-24s %d\n", p.Label, p.Count)
	}

	fmt.Println("Destination shares:")
	wide, err := domain.Spread(snap.Shares)
	if err != nil {
		fmt.Printf("  unavailable: %v\n", err)
		return
	}
	for _, d := range wide {
		fmt.Printf("  %-10s letters=%.4f journeys=%.4f\n", d.EndCountry, d.TotalLetters, d.TotalJourneys)
	}
}
