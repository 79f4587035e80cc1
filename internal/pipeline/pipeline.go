package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/TNRProtography/solar-dashboard/internal/domain"
	"github.com/TNRProtography/solar-dashboard/internal/observability"
)

// Fetcher retrieves one window's raw records per event feed. Implementations
// own retry and backoff; a returned error means the feed is unavailable for
// this cycle.
type Fetcher interface {
	FetchCMEs(ctx context.Context, window Window) ([]domain.CME, error)
	FetchFlares(ctx context.Context, window Window) ([]domain.Flare, error)
	FetchShocks(ctx context.Context, window Window) ([]domain.Shock, error)
}

// AlertPublisher delivers Earth-directed CMEs to downstream alerting.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, cmes []domain.EnhancedCME) error
}

// Options tune the refresh loop.
type Options struct {
	RefreshInterval time.Duration
	WindowDays      int
	AlertMaxScore   domain.ImpactScore
}

// Pipeline runs the periodic fetch-enrich-rank cycle and holds the latest
// snapshot. One cycle is in flight at a time; a snapshot is replaced
// atomically so readers never observe a partial refresh.
type Pipeline struct {
	fetcher Fetcher
	alerts  AlertPublisher // nil disables alert publishing
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	opts    Options

	latest atomic.Pointer[Snapshot]
	ready  atomic.Bool
}

// New creates a Pipeline. Pass a nil alerts publisher to disable alerting.
func New(fetcher Fetcher, alerts AlertPublisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, opts Options) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		alerts:  alerts,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
		opts:    opts,
	}
}

// Latest returns the most recent snapshot, or false before the first
// successful refresh.
func (p *Pipeline) Latest() (Snapshot, bool) {
	snap := p.latest.Load()
	if snap == nil {
		return Snapshot{}, false
	}
	return *snap, true
}

// CheckReadiness returns nil once the pipeline has produced at least one
// snapshot, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no snapshot produced yet")
	}
	return nil
}

// Run executes the refresh loop until the context is cancelled. The first
// refresh happens immediately; afterwards cycles follow the configured
// interval, with exponential backoff after failed cycles.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("refresh loop started",
		"interval", p.opts.RefreshInterval,
		"window_days", p.opts.WindowDays,
	)
	p.metrics.RefreshRunning.Set(1)
	defer p.metrics.RefreshRunning.Set(0)

	// Backoff after a failed cycle: start at a second, double per failure,
	// never wait longer than a regular interval.
	initialBackoff := min(time.Second, p.opts.RefreshInterval)
	backoff := initialBackoff

	ticker := p.clock.NewTicker(p.opts.RefreshInterval)
	defer ticker.Stop()

	retry := p.runCycle(ctx)

	for {
		var wake <-chan time.Time
		if retry {
			wake = p.clock.After(backoff)
			backoff = nextBackoff(backoff, p.opts.RefreshInterval)
		} else {
			backoff = initialBackoff
			wake = ticker.Chan()
		}

		select {
		case <-ctx.Done():
			p.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		case <-wake:
			retry = p.runCycle(ctx)
		}
	}
}

// runCycle performs one refresh and reports whether it should be retried
// with backoff instead of waiting for the next tick.
func (p *Pipeline) runCycle(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if err := p.refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("refresh failed", "error", err)
		p.metrics.RefreshErrors.Inc()
		return true
	}
	return false
}

// refresh fetches all three feeds for the current window, builds a snapshot,
// publishes it, and hands Earth-directed CMEs to the alert sink. A fetch
// failure keeps the previous snapshot in place.
func (p *Pipeline) refresh(ctx context.Context) error {
	start := p.clock.Now()
	window := p.currentWindow()

	cmes, err := p.fetcher.FetchCMEs(ctx, window)
	if err != nil {
		return fmt.Errorf("fetch CMEs: %w", err)
	}
	flares, err := p.fetcher.FetchFlares(ctx, window)
	if err != nil {
		return fmt.Errorf("fetch flares: %w", err)
	}
	shocks, err := p.fetcher.FetchShocks(ctx, window)
	if err != nil {
		return fmt.Errorf("fetch shocks: %w", err)
	}

	snap := BuildSnapshot(cmes, flares, shocks, window, p.clock.Now())
	p.latest.Store(&snap)
	p.ready.Store(true)

	p.metrics.RefreshCycles.Inc()
	p.metrics.RefreshDuration.Observe(p.clock.Since(start).Seconds())
	p.metrics.LastRefreshTime.Set(float64(snap.RefreshedAt.Unix()))
	p.metrics.EarthDirectedCMEs.Set(float64(len(snap.EarthDirected)))

	p.logger.Info("snapshot refreshed",
		"cmes", len(cmes),
		"earth_directed", len(snap.EarthDirected),
		"flares", len(flares),
		"shocks", len(shocks),
		"window_start", window.Start,
		"window_end", window.End,
	)

	p.publishAlerts(ctx, snap)
	return nil
}

// publishAlerts pushes qualifying CMEs to the alert sink. Publishing is best
// effort: a sink failure is logged but never invalidates the snapshot.
func (p *Pipeline) publishAlerts(ctx context.Context, snap Snapshot) {
	if p.alerts == nil {
		return
	}
	cmes := alertable(snap.EarthDirected, p.opts.AlertMaxScore)
	if len(cmes) == 0 {
		return
	}
	if err := p.alerts.PublishAlerts(ctx, cmes); err != nil {
		p.logger.Warn("alert publish failed", "error", err, "count", len(cmes))
		return
	}
	p.metrics.AlertsPublished.Add(float64(len(cmes)))
}

// currentWindow is the rolling fetch range ending now.
func (p *Pipeline) currentWindow() Window {
	end := p.clock.Now().UTC()
	return Window{
		Start: end.AddDate(0, 0, -p.opts.WindowDays),
		End:   end,
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
