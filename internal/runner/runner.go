// Package runner sequences test cases through the resolver and executor and
// aggregates their outcomes into a run summary.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/platform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxAttemptsCeiling caps the per-step retry budget.
const MaxAttemptsCeiling = 5

// RunIDLayout formats run IDs and artifact timestamps.
const RunIDLayout = "20060102_150405"

// StepResolver turns one step into an action.
type StepResolver interface {
	Resolve(ctx context.Context, step string) (model.Action, error)
}

// ActionExecutor performs one action against a session.
type ActionExecutor interface {
	Execute(ctx context.Context, b platform.Browser, action model.Action) error
}

// Observer receives finalized results, e.g. a metrics collector.
type Observer interface {
	ObserveStep(model.StepResult)
	ObserveCase(model.CaseResult)
}

// Config controls a run.
type Config struct {
	OutputDir   string        // Screenshots are written under OutputDir/screenshots
	MaxAttempts int           // Attempts per step for retryable failures (1..MaxAttemptsCeiling)
	RetryDelay  time.Duration // Pause between attempts
	CasePause   time.Duration // Pause between cases in sequential mode
	Workers     int           // Cases run in parallel on separate sessions when > 1
	KeepSession bool          // Leave sessions open after the run
}

// Runner executes test cases.
type Runner struct {
	cfg      Config
	resolver StepResolver
	executor ActionExecutor
	launcher platform.Launcher
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver reports every step and case result to o.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New constructs a Runner.
func New(cfg Config, resolver StepResolver, executor ActionExecutor, launcher platform.Launcher, opts ...Option) *Runner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxAttempts > MaxAttemptsCeiling {
		cfg.MaxAttempts = MaxAttemptsCeiling
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	r := &Runner{
		cfg:      cfg,
		resolver: resolver,
		executor: executor,
		launcher: launcher,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID formats t as a run identifier.
func RunID(t time.Time) string { return t.Format(RunIDLayout) }

// Run executes every case and returns the summary. Step and infrastructure
// failures are recorded in the summary, not returned. Cancelling ctx stops
// the run at the next step or case boundary; cases that never started are
// left out and the summary is marked cancelled.
func (r *Runner) Run(ctx context.Context, cases []model.TestCase) (*model.RunSummary, error) {
	if err := checkIDs(cases); err != nil {
		return nil, err
	}

	start := r.now()
	summary := model.NewRunSummary(RunID(start), start)
	r.logger.Info("run started",
		zap.String("run_id", summary.RunID),
		zap.Int("cases", len(cases)),
		zap.Int("workers", r.cfg.Workers))

	var results []*model.CaseResult
	if r.cfg.Workers > 1 && len(cases) > 1 {
		results = r.runParallel(ctx, cases)
	} else {
		results = r.runSequential(ctx, cases)
	}
	for _, res := range results {
		if res == nil {
			summary.Cancelled = true
			continue
		}
		summary.Add(*res)
	}
	if ctx.Err() != nil {
		summary.Cancelled = true
	}
	summary.Finish(r.now())

	r.logger.Info("run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("total", summary.Total),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration),
		zap.Bool("cancelled", summary.Cancelled))
	return summary, nil
}

func checkIDs(cases []model.TestCase) error {
	seen := make(map[string]bool, len(cases))
	for i, tc := range cases {
		if tc.ID == "" {
			return fmt.Errorf("test case %d has no id", i+1)
		}
		if seen[tc.ID] {
			return fmt.Errorf("duplicate test case id %q", tc.ID)
		}
		seen[tc.ID] = true
	}
	return nil
}

// runSequential runs cases one after another on one session. The returned
// slice has a nil entry for every case that never started.
func (r *Runner) runSequential(ctx context.Context, cases []model.TestCase) []*model.CaseResult {
	results := make([]*model.CaseResult, len(cases))
	var session platform.Browser
	defer func() { r.release(session) }()

	for i, tc := range cases {
		if ctx.Err() != nil {
			r.logger.Warn("run cancelled", zap.Int("remaining", len(cases)-i))
			break
		}
		if i > 0 && r.cfg.CasePause > 0 && !sleep(ctx, r.cfg.CasePause) {
			r.logger.Warn("run cancelled", zap.Int("remaining", len(cases)-i))
			break
		}
		res := r.runCase(ctx, &session, tc)
		results[i] = &res
	}
	return results
}

// runParallel runs cases on up to Workers sessions at once. Each session is
// owned by one case at a time.
func (r *Runner) runParallel(ctx context.Context, cases []model.TestCase) []*model.CaseResult {
	results := make([]*model.CaseResult, len(cases))
	var mu sync.Mutex

	pool := make(chan platform.Browser, r.cfg.Workers)
	for i := 0; i < r.cfg.Workers; i++ {
		pool <- nil
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i, tc := range cases {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			session := <-pool
			defer func() { pool <- session }()
			if ctx.Err() != nil {
				return nil
			}
			res := r.runCase(ctx, &session, tc)
			mu.Lock()
			results[i] = &res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	close(pool)
	for session := range pool {
		r.release(session)
	}
	return results
}

// release closes a session the runner launched.
func (r *Runner) release(b platform.Browser) {
	if b == nil || r.cfg.KeepSession {
		return
	}
	if err := b.Close(); err != nil {
		r.logger.Debug("close session", zap.Error(err))
	}
}

// acquire returns a live session, pinging *session first and launching a
// new one through the launcher when it is missing or dead.
func (r *Runner) acquire(ctx context.Context, session *platform.Browser) error {
	if *session != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := (*session).Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		r.logger.Warn("browser session lost, re-acquiring", zap.Error(err))
		r.release(*session)
		*session = nil
	}
	b, err := r.launcher.Launch(ctx)
	if err != nil {
		return err
	}
	*session = b
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
