// Command validate checks a journeys table against the invariants of the
// derived tables: pair counts conserve records, calendar buckets match the
// day arithmetic, and destination shares sum to one per measure. When a
// snapshot JSON is given it is compared against a fresh aggregation.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input testdata/journeys.csv \
//	  -snapshot data/mock/journeys_snapshot.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/letter-journeys/internal/adapter/csvfile"
	"github.com/couchcryptid/letter-journeys/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const shareTolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	input := flag.String("input", "", "path to the journeys CSV (or .tsv)")
	snapshotPath := flag.String("snapshot", "", "optional snapshot JSON to compare against a fresh aggregation")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*input, *snapshotPath, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(inputPath, snapshotPath string, out io.Writer) int {
	fmt.Fprintln(out, "=== Letter Journeys Integrity Validation ===")
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records, err := csvfile.NewReader(inputPath, logger).Extract(context.Background())
	if err != nil {
		var dataErr *domain.DataError
		if errors.As(err, &dataErr) {
			fmt.Fprintf(out, "FATAL: input rejected at line %d, field %q: %s\n", dataErr.Line, dataErr.Field, dataErr.Reason)
		} else {
			fmt.Fprintf(out, "FATAL: load input: %v\n", err)
		}
		return 1
	}

	phases := []*phase{
		validatePairs(records),
		validateCalendar(records),
		validateShares(records),
	}
	if snapshotPath != "" {
		phases = append(phases, validateSnapshot(records, snapshotPath))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d\n", len(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Pair tally ──

func validatePairs(records []domain.JourneyRecord) *phase {
	p := &phase{name: "Phase 1: Pair Tally"}

	pairs, err := domain.TallyPairs(records)
	if err != nil {
		p.errorf("tally: %v", err)
		return p
	}

	type key struct{ start, end string }
	total := 0
	seen := make(map[key]bool, len(pairs))
	for _, t := range pairs {
		total += t.Count
		if t.Count < 1 {
			p.errorf("pair %q: count %d below 1", t.Label, t.Count)
		}
		k := key{t.Start, t.End}
		if seen[k] {
			p.errorf("pair (%q, %q) appears twice", t.Start, t.End)
		}
		seen[k] = true
	}
	if total != len(records) {
		p.errorf("pair counts sum to %d, want %d records", total, len(records))
	}

	asc := domain.SortPairs(pairs, domain.Ascending)
	desc := domain.SortPairs(pairs, domain.Descending)
	slices.Reverse(desc)
	if diff := cmp.Diff(asc, desc); diff != "" {
		p.errorf("descending view is not the reverse of ascending (-asc +reversed desc):\n%s", diff)
	}
	return p
}

// ── Phase 2: Calendar ──

func validateCalendar(records []domain.JourneyRecord) *phase {
	p := &phase{name: "Phase 2: Calendar Buckets"}

	buckets, err := domain.BucketCalendar(records)
	if err != nil {
		p.errorf("bucket: %v", err)
		return p
	}
	if len(buckets) != len(records) {
		p.errorf("%d buckets for %d records", len(buckets), len(records))
		return p
	}

	for i, b := range buckets {
		line := records[i].Line
		if b.WeekOfMonth < 1 || b.WeekOfMonth > 5 {
			p.errorf("line %d: week_of_month %d out of range", line, b.WeekOfMonth)
		}
		if want := int(math.Ceil(float64(b.Date.Day()) / 7)); b.WeekOfMonth != want {
			p.errorf("line %d: week_of_month %d, want %d", line, b.WeekOfMonth, want)
		}
		if _, want := b.Date.ISOWeek(); b.WeekOfYear != want {
			p.errorf("line %d: week_of_year %d, want %d", line, b.WeekOfYear, want)
		}
		if b.Year != b.Date.Year() {
			p.errorf("line %d: year %d, want %d", line, b.Year, b.Date.Year())
		}
		if b.MonthLabel != domain.MonthOrder[b.Date.Month()-1] {
			p.errorf("line %d: month label %q for %s", line, b.MonthLabel, b.Date.Format(time.DateOnly))
		}
		if !slices.Contains(domain.WeekdayOrder, b.WeekdayLabel) {
			p.errorf("line %d: unknown weekday label %q", line, b.WeekdayLabel)
		}
	}
	return p
}

// ── Phase 3: Destination shares ──

func validateShares(records []domain.JourneyRecord) *phase {
	p := &phase{name: "Phase 3: Destination Shares"}

	shares, err := domain.DestinationShares(records)
	var divErr *domain.DivisionByZeroError
	if errors.As(err, &divErr) {
		p.errorf("grand total of %s is zero; shares are undefined", divErr.Measure)
		return p
	}
	if err != nil {
		p.errorf("shares: %v", err)
		return p
	}
	if len(records) == 0 {
		return p
	}

	for _, m := range domain.Measures {
		if sum := domain.SumMeasure(shares, m); math.Abs(sum-1) > shareTolerance {
			p.errorf("%s shares sum to %.12f, want 1", m, sum)
		}
	}
	for _, s := range shares {
		if s.Value < 0 || s.Value > 1 {
			p.errorf("%s %s share %f outside [0, 1]", s.EndCountry, s.Measure, s.Value)
		}
	}

	wide, err := domain.Spread(shares)
	if err != nil {
		p.errorf("spread: %v", err)
		return p
	}
	if diff := cmp.Diff(shares, domain.Gather(wide)); diff != "" {
		p.errorf("gather(spread(shares)) differs (-want +got):\n%s", diff)
	}
	return p
}

// ── Phase 4: Snapshot consistency ──

func validateSnapshot(records []domain.JourneyRecord, path string) *phase {
	p := &phase{name: "Phase 4: Snapshot Consistency (JSON vs CSV)"}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read snapshot: %v", err)
		return p
	}
	var got domain.Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		p.errorf("decode snapshot: %v", err)
		return p
	}

	want, err := domain.BuildSnapshot(records)
	if err != nil {
		p.errorf("aggregate input: %v", err)
		return p
	}

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Snapshot{}, "GeneratedAt", "Regions"),
		cmpopts.EquateEmpty(),
		cmpopts.EquateApprox(0, shareTolerance),
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		p.errorf("snapshot differs from aggregation (-want +got):\n%s", diff)
	}
	return p
}
