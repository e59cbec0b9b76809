package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"wrtrack/internal/history"
	"wrtrack/internal/metrics"
)

// Scheduler drives an unbounded sequence of poll cycles at a fixed target
// period, self-correcting for the time each cycle consumes.
//
// Each cycle runs fetch, merge and persist strictly in sequence inside a
// single goroutine, so the in-memory History never needs locking: there is
// at most one outstanding network request and one in-flight mutation at any
// time. A cycle whose fetch exhausts its retries is abandoned, no merge and
// no persist, and the scheduler proceeds to the next scheduled cycle.
//
// Start and Stop are safe for concurrent use.
type Scheduler struct {
	client  *Client
	store   *history.Store
	courses []string
	hist    history.History
	period  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a polling [Scheduler].
//
// The scheduler takes exclusive ownership of hist: from the first Start
// until Stop returns, only the polling goroutine touches it.
func NewScheduler(client *Client, store *history.Store, courses []string, hist history.History, period time.Duration, logger *slog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		client:  client,
		store:   store,
		courses: courses,
		hist:    hist,
		period:  period,
		logger:  logger,
		metrics: m,
	}
}

// Start begins the polling loop in a background goroutine. The first cycle
// runs immediately; each later cycle starts period minus the previous
// cycle's duration after it, floored at zero.
//
// If ctx is nil, context.Background() is used. Start is non-blocking and
// idempotent; if Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	if ctx == nil {
		ctx = context.Background()
	}
	var pollCtx context.Context
	pollCtx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	s.mu.Unlock()

	s.metrics.SetTrackedCourses(len(s.courses))

	go func() {
		defer s.wg.Done()
		for {
			start := time.Now()
			s.runCycle(pollCtx)
			elapsed := time.Since(start)

			select {
			case <-pollCtx.Done():
				return
			case <-time.After(sleepFor(s.period, elapsed)):
			}
		}
	}()
}

// Stop halts the polling loop and blocks until the in-flight cycle, if any,
// has finished its persist. Stop is idempotent and safe to call before
// Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	if s.client != nil {
		s.client.Close()
	}
}

// runCycle performs one fetch, merge, persist pass over all tracked courses.
func (s *Scheduler) runCycle(ctx context.Context) {
	logger := s.logger.With("cycle_id", uuid.NewString())
	start := time.Now()

	logger.Info("poll cycle started", "courses", len(s.courses))

	observations, err := s.client.Fetch(ctx, s.courses)
	if err != nil {
		if ctx.Err() != nil {
			// shutting down; not an upstream problem
			return
		}
		logger.Error("poll cycle abandoned", "error", err)
		s.metrics.ObserveCycle(metrics.CycleFetchFailed, time.Since(start))
		return
	}

	appended := history.Merge(s.hist, observations)
	s.metrics.AddAppended(appended)

	// the full history is rewritten every cycle, changed or not, so a crash
	// loses at most the cycle in progress
	result := metrics.CycleOK
	if err := s.store.Save(s.hist); err != nil {
		logger.Error("persist history failed", "error", err)
		result = metrics.CycleSaveFailed
	}

	s.metrics.ObserveCycle(result, time.Since(start))
	logger.Info("poll cycle finished",
		"observations", len(observations),
		"appended", appended,
		"elapsed", time.Since(start).String(),
	)
}

// sleepFor computes the delay before the next cycle: the target period minus
// the time the previous cycle consumed, floored at zero so an over-budget
// cycle rolls straight into the next one instead of skipping it.
func sleepFor(period, elapsed time.Duration) time.Duration {
	if elapsed >= period {
		return 0
	}
	return period - elapsed
}
