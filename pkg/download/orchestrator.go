// Package download drives batched sequence retrieval over retry rounds
// until every batch is persisted.
//
// One round attempts each outstanding batch in order: batches already in
// the dedup store are skipped, a non-empty payload is persisted, and an
// empty payload re-queues the batch for the next round. Between rounds the
// orchestrator waits a fixed delay, giving the archive recovery time. There
// is no retry ceiling by default; the loop runs until no failures remain or
// the context is cancelled.
package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/dorbarker/gogetem/pkg/batch"
	"github.com/dorbarker/gogetem/pkg/dedup"
	"github.com/dorbarker/gogetem/pkg/logging"
)

// Prometheus metrics for download orchestration.
var (
	downloadBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gogetem_download_batches_total",
		Help: "Total batches by outcome",
	}, []string{"outcome"}) // "persisted", "skipped", "empty"

	downloadRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gogetem_download_rounds_total",
		Help: "Total retry rounds started",
	})

	downloadRoundFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gogetem_download_round_failures",
		Help: "Batches still outstanding after the last round",
	})

	downloadWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gogetem_download_wait_seconds",
		Help:    "Time spent waiting between retry rounds",
		Buckets: []float64{1, 5, 10, 30, 60, 120},
	})
)

// Errors returned by the orchestrator.
var (
	// ErrCancelled is returned when the context is cancelled mid-session.
	ErrCancelled = errors.New("download cancelled")

	// ErrRoundsExhausted is returned when MaxRounds is set and reached
	// with batches still outstanding.
	ErrRoundsExhausted = errors.New("retry rounds exhausted")
)

// Fetcher retrieves one batch's decompressed FASTA text. An empty string
// with a nil error means the archive had nothing for the batch this round;
// any error is fatal to the run.
type Fetcher interface {
	FetchBatch(ctx context.Context, key batch.Key) (string, error)
}

// Config holds orchestrator configuration. Zero delays are valid and
// disable the corresponding wait, which tests rely on.
type Config struct {
	// RoundDelay is the pause between retry rounds while failures remain
	RoundDelay time.Duration

	// PacingDelay is the pause after every attempted fetch, bounding the
	// request rate to the archive. Skipped batches are not paced.
	PacingDelay time.Duration

	// MaxRounds caps the number of rounds. Zero means no cap, matching
	// the retry-until-success contract.
	MaxRounds int
}

// DefaultConfig returns the production pacing configuration.
func DefaultConfig() Config {
	return Config{
		RoundDelay:  30 * time.Second,
		PacingDelay: 1 * time.Second,
		MaxRounds:   0,
	}
}

// Orchestrator drives a fetcher over planned batches, skipping persisted
// ones and re-driving failures round by round.
type Orchestrator struct {
	fetcher Fetcher
	store   dedup.Store
	config  Config
	logger  zerolog.Logger
}

// New creates an orchestrator. The config is taken verbatim; use
// DefaultConfig for production pacing.
func New(fetcher Fetcher, store dedup.Store, cfg Config) (*Orchestrator, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	return &Orchestrator{
		fetcher: fetcher,
		store:   store,
		config:  cfg,
		logger:  logging.NewLogger("download"),
	}, nil
}

// Run drives all keys to persistence and returns nil once no failures
// remain. Empty payloads are retried in later rounds; transport, protocol,
// and store failures propagate immediately and terminate the run. Partial
// progress survives in the store, so a re-run resumes where this one
// stopped.
func (o *Orchestrator) Run(ctx context.Context, keys []batch.Key) error {
	work := make([]batch.Key, len(keys))
	copy(work, keys)

	for round := 1; ; round++ {
		downloadRoundsTotal.Inc()

		o.logger.Info().
			Int("round", round).
			Int("batches", len(work)).
			Msg("Starting retrieval round")

		failures, err := o.drain(ctx, work)
		if err != nil {
			return err
		}

		downloadRoundFailures.Set(float64(len(failures)))

		if len(failures) == 0 {
			o.logger.Info().
				Int("round", round).
				Msg("All batches persisted")
			return nil
		}

		if o.config.MaxRounds > 0 && round >= o.config.MaxRounds {
			return fmt.Errorf("%w: %d batches outstanding after %d rounds",
				ErrRoundsExhausted, len(failures), round)
		}

		o.logger.Warn().
			Int("round", round).
			Int("failures", len(failures)).
			Dur("delay", o.config.RoundDelay).
			Time("resume_at", time.Now().Add(o.config.RoundDelay)).
			Msg("Waiting before next round")

		downloadWaitSeconds.Observe(o.config.RoundDelay.Seconds())
		if err := o.wait(ctx, o.config.RoundDelay); err != nil {
			return err
		}

		work = failures
	}
}

// drain runs one round over the work list, returning the keys whose fetch
// produced an empty payload, in encounter order.
func (o *Orchestrator) drain(ctx context.Context, work []batch.Key) ([]batch.Key, error) {
	var failures []batch.Key

	for _, key := range work {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		default:
		}

		// An empty key carries no accessions and has nothing to fetch
		if key.Empty() {
			continue
		}

		ok, err := o.store.Has(ctx, string(key))
		if err != nil {
			return nil, fmt.Errorf("dedup check: %w", err)
		}
		if ok {
			downloadBatchesTotal.WithLabelValues("skipped").Inc()
			o.logger.Debug().
				Str("digest", dedup.Digest(string(key))).
				Int("accessions", len(key.Accessions())).
				Msg("Batch already persisted")
			continue
		}

		text, err := o.fetcher.FetchBatch(ctx, key)
		if err != nil {
			// Transport and protocol failures terminate the whole run
			return nil, err
		}

		if text == "" {
			downloadBatchesTotal.WithLabelValues("empty").Inc()
			failures = append(failures, key)
		} else {
			if err := o.store.Put(ctx, string(key), []byte(text)); err != nil {
				return nil, fmt.Errorf("persist batch: %w", err)
			}
			downloadBatchesTotal.WithLabelValues("persisted").Inc()
		}

		// Pace every attempted fetch, successful or not; skips are free
		if err := o.wait(ctx, o.config.PacingDelay); err != nil {
			return nil, err
		}
	}

	return failures, nil
}

// wait sleeps for d with context cancellation support.
func (o *Orchestrator) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	case <-time.After(d):
		return nil
	}
}
