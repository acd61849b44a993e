package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/sandevgo/warden/pkg/log"
)

const stopTimeout = 5 * time.Second

// Cycler is the ledger surface the scheduler drives.
type Cycler interface {
	DailyCycle(ctx context.Context, now time.Time)
	LastDailyRun() (time.Time, bool)
}

// Scheduler runs the daily cycle once per calendar day at local midnight of
// a fixed-offset zone, and replays days missed while the process was down.
type Scheduler struct {
	// mu keeps replayed and live cycles in chronological order.
	mu     sync.Mutex
	ledger Cycler
	loc    *time.Location
	spec   string
	now    func() time.Time
	cron   *rcron.Cron
}

func New(ledger Cycler, loc *time.Location, spec string) *Scheduler {
	return &Scheduler{
		ledger: ledger,
		loc:    loc,
		spec:   spec,
		now:    time.Now,
	}
}

// CatchUp runs DailyCycle for every local midnight after the last completed
// run and strictly before now, oldest first. It returns the number of cycles run.
// Without a previous run there is nothing to replay.
func (s *Scheduler) CatchUp(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catchUp(ctx)
}

func (s *Scheduler) catchUp(ctx context.Context) int {
	last, ok := s.ledger.LastDailyRun()
	if !ok {
		log.FromCtx(ctx).Info().Msg("no previous daily run, waiting for schedule")
		return 0
	}

	now := s.now().In(s.loc)
	next := Midnight(last, s.loc).AddDate(0, 0, 1)

	n := 0
	for next.Before(now) {
		log.FromCtx(ctx).Info().Time("nominal", next).Msg("performing missed daily cycle")
		s.ledger.DailyCycle(ctx, next)
		next = next.AddDate(0, 0, 1)
		n++
	}
	return n
}

// Start registers the live trigger and replays any midnight that passed since
// the last catch-up, so a day is never skipped between startup and the first
// live fire. It does not block.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	cl := cronLogger{ctx: ctx}

	s.cron = rcron.New(
		rcron.WithLocation(s.loc),
		rcron.WithLogger(cl),
		rcron.WithChain(rcron.Recover(cl), rcron.SkipIfStillRunning(cl)),
	)

	if _, err := s.cron.AddFunc(s.spec, func() { s.fire(ctx) }); err != nil {
		return fmt.Errorf("invalid daily schedule %q: %w", s.spec, err)
	}
	s.mu.Lock()
	s.cron.Start()
	if n := s.catchUp(ctx); n > 0 {
		logger.Info().Int("cycles", n).Msg("missed daily cycles replayed on start")
	}
	s.mu.Unlock()

	if entries := s.cron.Entries(); len(entries) > 0 {
		logger.Info().Str("spec", s.spec).Time("next", entries[0].Next).Msg("daily scheduler started")
	}
	return nil
}

func (s *Scheduler) fire(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.DailyCycle(ctx, s.now().In(s.loc))
}

func (s *Scheduler) Shutdown(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(stopTimeout):
		log.FromCtx(ctx).Warn().Msg("timed out waiting for running daily cycle")
	}
	return nil
}

// Midnight is the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// cronLogger adapts robfig/cron logging to zerolog.
type cronLogger struct {
	ctx context.Context
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.FromCtx(l.ctx).Debug().Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.FromCtx(l.ctx).Error().Str("component", "cron").Err(err).Fields(keysAndValues).Msg(msg)
}
