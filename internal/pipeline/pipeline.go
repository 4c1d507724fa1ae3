package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/letter-journeys/internal/domain"
	"github.com/couchcryptid/letter-journeys/internal/observability"
)

// Extractor reads the full journeys table from its source.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.JourneyRecord, error)
}

// Transformer derives a snapshot of chartable tables from journey records.
type Transformer interface {
	Transform(ctx context.Context, records []domain.JourneyRecord) (domain.Snapshot, error)
}

// Loader hands a finished snapshot to a rendering or transport collaborator.
// Loaders must treat the snapshot as read-only.
type Loader interface {
	Name() string
	Load(ctx context.Context, snap domain.Snapshot) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline orchestrates the extract-transform-load cycle.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	refresh     time.Duration
	latest      atomic.Pointer[domain.Snapshot]
}

// New creates a Pipeline. A zero refresh interval runs the cycle once and
// then idles until the context is cancelled.
func New(e Extractor, t Transformer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, refresh time.Duration) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		refresh:     refresh,
	}
}

// CheckReadiness returns nil once a snapshot has been published, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.latest.Load() == nil {
		return errors.New("pipeline has not published a snapshot yet")
	}
	return nil
}

// Latest returns the most recently published snapshot.
func (p *Pipeline) Latest() (domain.Snapshot, bool) {
	snap := p.latest.Load()
	if snap == nil {
		return domain.Snapshot{}, false
	}
	return *snap, true
}

// Run executes the ETL cycle until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "refresh_interval", p.refresh, "loaders", len(p.loaders))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		err := p.RunOnce(ctx)
		wait := p.refresh
		switch {
		case err == nil:
			backoff = initialBackoff
		case ctx.Err() != nil:
			continue
		case errors.Is(err, domain.ErrDataError):
			// Bad input does not heal on retry; wait for the next refresh.
			p.logger.Error("input rejected", "error", err)
		default:
			p.logger.Error("pipeline cycle failed", "error", err, "retry_in", backoff)
			wait = backoff
			backoff = nextBackoff(backoff, maxBackoff)
		}

		if wait <= 0 {
			<-ctx.Done()
			continue
		}
		sleepWithContext(ctx, wait)
	}
}

// RunOnce performs one extract-transform-load cycle.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	start := time.Now()

	records, err := p.extractor.Extract(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrDataError) {
			p.metrics.DataErrors.WithLabelValues("extract").Inc()
		}
		return err
	}
	p.metrics.RecordsRead.Add(float64(len(records)))

	snap, err := p.transformer.Transform(ctx, records)
	if err != nil {
		if errors.Is(err, domain.ErrDataError) {
			p.metrics.DataErrors.WithLabelValues("transform").Inc()
		}
		return err
	}

	p.latest.Store(&snap)
	p.load(ctx, snap)

	p.metrics.SnapshotsPublished.Inc()
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("snapshot published",
		"records", snap.Records,
		"pairs", len(snap.Pairs),
		"shares", len(snap.Shares),
		"regions", len(snap.Regions),
		"duration", time.Since(start),
	)
	return nil
}

// load hands the snapshot to every loader. A failing loader is logged and
// counted; it does not prevent the others from running.
func (p *Pipeline) load(ctx context.Context, snap domain.Snapshot) {
	for _, l := range p.loaders {
		if err := l.Load(ctx, snap); err != nil {
			p.logger.Error("load snapshot failed", "loader", l.Name(), "error", err)
			p.metrics.LoadErrors.WithLabelValues(l.Name()).Inc()
		}
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
