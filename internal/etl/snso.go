package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/EMC-Underground/munger3/internal/insight"
	"github.com/EMC-Underground/munger3/internal/logger"
	"github.com/EMC-Underground/munger3/internal/report"
)

// SNSOOptions wires an SNSOMunger. Exporter and Recorders are optional.
type SNSOOptions struct {
	Worklist  WorklistLoader
	Fetcher   DocumentFetcher
	Publisher InsightPublisher
	Exporter  InsightExporter
	Recorders []CycleRecorder

	WorklistKey   string
	MungerVersion string
	Interval      time.Duration
	DryRun        bool
	// RecordTimeout bounds each recorder call. Zero means DefaultRecordTimeout.
	RecordTimeout time.Duration

	Log *logger.Logger
}

// DefaultRecordTimeout bounds a recorder call when SNSOOptions leaves it unset.
const DefaultRecordTimeout = 30 * time.Second

// SNSOMunger republishes every customer's serial number to sales order
// mapping, then sleeps for Interval and starts over.
type SNSOMunger struct {
	opts SNSOOptions
	log  *logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSNSOMunger(opts SNSOOptions) *SNSOMunger {
	log := opts.Log
	if log == nil {
		log = logger.Named("munger3")
	}
	if opts.RecordTimeout <= 0 {
		opts.RecordTimeout = DefaultRecordTimeout
	}
	return &SNSOMunger{
		opts:  opts,
		log:   log,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// RunCycle makes one pass over a freshly loaded worklist.
//
// A worklist load failure ends the cycle early with LoadError set. A failing
// customer is logged and skipped; the rest of the worklist is still attempted.
// The cycle stops between customers only when ctx is done.
func (m *SNSOMunger) RunCycle(ctx context.Context) (c report.Cycle) {
	c = report.Cycle{
		MungerVersion: m.opts.MungerVersion,
		StartedAt:     m.now().UTC(),
		DryRun:        m.opts.DryRun,
	}
	defer m.finish(ctx, &c)

	gduns, err := m.opts.Worklist.Load(ctx, m.opts.WorklistKey)
	if err != nil {
		c.LoadError = err.Error()
		m.log.Error().Err(err).Str("key", m.opts.WorklistKey).Msg("load worklist")
		return c
	}
	c.Customers = len(gduns)
	m.log.Info().Int("customers", len(gduns)).Str("key", m.opts.WorklistKey).Msg("worklist loaded")

	for _, id := range gduns {
		if ctx.Err() != nil {
			m.log.Warn().Err(ctx.Err()).Int("remaining", c.Customers-c.Published-c.Failed()).Msg("cycle interrupted")
			return c
		}
		exported, err := m.processCustomer(ctx, id)
		if err != nil {
			c.Failures = append(c.Failures, report.CustomerFailure{GDUN: id, Error: err.Error()})
			m.log.Error().Err(err).Str("gdun", id).Msg("customer skipped")
			continue
		}
		c.Published++
		if exported {
			c.Exported++
		}
	}
	return c
}

func (m *SNSOMunger) processCustomer(ctx context.Context, id string) (bool, error) {
	doc, err := m.opts.Fetcher.Fetch(ctx, id)
	if err != nil {
		return false, err
	}
	mapping := insight.SerialToOrder(doc)

	key, etag, err := m.opts.Publisher.Publish(ctx, id, mapping)
	if err != nil {
		return false, err
	}
	ev := m.log.Info().Str("gdun", id).Str("key", key).Str("etag", etag).Int("pairs", len(mapping))
	if m.opts.DryRun {
		ev = ev.Bool("dry_run", true)
	}
	ev.Msg("insight published")

	if m.opts.Exporter == nil {
		return false, nil
	}
	pkey, err := m.opts.Exporter.Export(ctx, id, mapping)
	if err != nil {
		m.log.Warn().Err(err).Str("gdun", id).Msg("parquet export")
		return false, nil
	}
	return pkey != "", nil
}

func (m *SNSOMunger) finish(ctx context.Context, c *report.Cycle) {
	c.FinishedAt = m.now().UTC()

	switch {
	case c.LoadError != "":
		m.log.Warn().Str("load_error", c.LoadError).Msg("cycle aborted before processing customers")
	case c.Failed() > 0:
		m.log.Warn().
			Int("customers", c.Customers).
			Int("published", c.Published).
			Int("failed", c.Failed()).
			Strs("failed_gduns", c.FailedGDUNs()).
			Msg("cycle completed with failures")
	default:
		m.log.Info().Int("customers", c.Customers).Int("published", c.Published).Msg("cycle completed")
	}

	// Interrupted cycles are recorded too.
	rctx := context.WithoutCancel(ctx)
	for _, r := range m.opts.Recorders {
		if err := m.record(rctx, r, *c); err != nil {
			m.log.Warn().Err(err).Msg("record cycle")
		}
	}
}

func (m *SNSOMunger) record(ctx context.Context, r CycleRecorder, c report.Cycle) error {
	ctx, cancel := context.WithTimeout(ctx, m.opts.RecordTimeout)
	defer cancel()
	return r.RecordCycle(ctx, c)
}

// Run loops RunCycle with Interval between cycles until ctx is done.
func (m *SNSOMunger) Run(ctx context.Context) error {
	if m.opts.Interval <= 0 {
		return fmt.Errorf("cycle interval must be positive, got %s", m.opts.Interval)
	}
	for {
		c := m.RunCycle(ctx)
		next := c.FinishedAt.Add(m.opts.Interval)
		m.log.Info().
			Time("finished_at", c.FinishedAt).
			Time("next_start", next).
			Dur("took", c.Duration()).
			Msg("sleeping until next cycle")

		if err := m.sleep(ctx, m.opts.Interval); err != nil {
			m.log.Info().Err(err).Msg("munger stopped")
			return err
		}
	}
}

// Handle runs a single cycle per scheduled event. A worklist load failure is
// returned as an error; customer failures are reported in the result.
func (m *SNSOMunger) Handle(ctx context.Context, _ events.CloudWatchEvent) (map[string]any, error) {
	c := m.RunCycle(ctx)
	if c.LoadError != "" {
		return nil, errors.New("load worklist: " + c.LoadError)
	}
	return map[string]any{
		"ok":             true,
		"munger_version": c.MungerVersion,
		"customers":      c.Customers,
		"published":      c.Published,
		"failed":         c.Failed(),
		"failed_gduns":   c.FailedGDUNs(),
		"exported":       c.Exported,
		"dry_run":        c.DryRun,
		"started_at":     c.StartedAt.Format(time.RFC3339),
		"finished_at":    c.FinishedAt.Format(time.RFC3339),
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
