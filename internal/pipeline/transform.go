package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/letter-journeys/internal/domain"
	"github.com/couchcryptid/letter-journeys/internal/observability"
	"golang.org/x/sync/errgroup"
)

// JourneyTransformer implements Transformer: it filters records to the
// configured date range, optionally fills missing coordinates, then derives
// the calendar, pair, and share tables concurrently.
type JourneyTransformer struct {
	from, to time.Time
	geocoder domain.Geocoder
	regions  domain.RegionCounter
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// TransformerOption configures optional JourneyTransformer collaborators.
type TransformerOption func(*JourneyTransformer)

// WithDateRange restricts aggregation to [from, to]; zero bounds are open.
func WithDateRange(from, to time.Time) TransformerOption {
	return func(t *JourneyTransformer) { t.from, t.to = from, to }
}

// WithGeocoder enables coordinate enrichment.
func WithGeocoder(g domain.Geocoder) TransformerOption {
	return func(t *JourneyTransformer) { t.geocoder = g }
}

// WithRegionCounter enables per-region counts of journey end points.
func WithRegionCounter(rc domain.RegionCounter) TransformerOption {
	return func(t *JourneyTransformer) { t.regions = rc }
}

// NewTransformer creates a JourneyTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics, opts ...TransformerOption) *JourneyTransformer {
	t := &JourneyTransformer{logger: logger, metrics: metrics}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *JourneyTransformer) Transform(ctx context.Context, records []domain.JourneyRecord) (domain.Snapshot, error) {
	records = domain.FilterDateRange(records, t.from, t.to)
	records = t.enrich(ctx, records)

	var (
		calendar []domain.CalendarBucket
		pairs    []domain.PairTally
		shares   []domain.DestinationShare
		g        errgroup.Group
	)
	g.Go(func() error {
		var err error
		if calendar, err = domain.BucketCalendar(records); err != nil {
			return fmt.Errorf("bucket calendar: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if pairs, err = domain.TallyPairs(records); err != nil {
			return fmt.Errorf("tally pairs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		shares, err = domain.DestinationShares(records)
		var divErr *domain.DivisionByZeroError
		if errors.As(err, &divErr) {
			// Reported, not fatal: publish the other tables without shares.
			t.logger.Warn("destination shares skipped", "measure", divErr.Measure, "error", err)
			t.metrics.DataErrors.WithLabelValues("normalize").Inc()
			shares = []domain.DestinationShare{}
			return nil
		}
		if err != nil {
			return fmt.Errorf("destination shares: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.NewSnapshot(len(records), calendar, pairs, shares)
	if t.regions != nil {
		snap.Regions = t.regions.CountPoints(domain.EndPoints(records))
	}
	return snap, nil
}

// enrich returns a copy of records with missing coordinates geocoded.
func (t *JourneyTransformer) enrich(ctx context.Context, records []domain.JourneyRecord) []domain.JourneyRecord {
	if t.geocoder == nil {
		return records
	}
	out := make([]domain.JourneyRecord, len(records))
	total := 0
	for i, rec := range records {
		var n int
		out[i], n = domain.EnrichCoordinates(ctx, rec, t.geocoder, t.logger)
		total += n
	}
	if total > 0 {
		t.metrics.CoordinatesFilled.Add(float64(total))
		t.logger.Debug("coordinates geocoded", "filled", total)
	}
	return out
}
