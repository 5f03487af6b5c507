package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/platform"
	"go.uber.org/zap"
)

// ScreenshotDir is the screenshot directory relative to the output dir.
const ScreenshotDir = "screenshots"

const screenshotTimeout = 10 * time.Second

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// runCase drives one case through NotStarted -> Running -> Passed|Failed.
func (r *Runner) runCase(ctx context.Context, session *platform.Browser, tc model.TestCase) model.CaseResult {
	res := model.CaseResult{
		ID:          tc.ID,
		Name:        tc.Name,
		Description: tc.Description,
		Status:      model.StatusNotStarted,
		Steps:       []model.StepResult{},
	}
	logger := r.logger.With(zap.String("case", tc.ID))

	res.StartedAt = r.now()
	res.Status = model.StatusRunning
	logger.Info("case started", zap.String("name", tc.Name), zap.Int("steps", len(tc.Steps)))

	if err := r.acquire(ctx, session); err != nil {
		abort(&res, model.NewError(model.ErrInfrastructure, "acquire browser session", err))
	}

	for i, step := range tc.Steps {
		if res.Status != model.StatusRunning {
			break
		}
		if ctx.Err() != nil {
			abort(&res, model.NewError(model.ErrInfrastructure, "run cancelled", ctx.Err()))
			break
		}

		sr := r.runStep(ctx, *session, i+1, step)
		res.Steps = append(res.Steps, sr)
		if r.observer != nil {
			r.observer.ObserveStep(sr)
		}
		if sr.Status == model.StatusFailed {
			res.Status = model.StatusFailed
			res.Error = sr.Error
			res.Aborted = sr.ErrorKind == model.ErrInfrastructure
			logger.Warn("step failed",
				zap.Int("step", sr.Index),
				zap.String("text", sr.Step),
				zap.String("kind", string(sr.ErrorKind)),
				zap.String("error", sr.Error),
				zap.Int("attempts", sr.Attempts))
		}
	}
	if res.Status == model.StatusRunning {
		res.Status = model.StatusPassed
	}

	if res.Status == model.StatusFailed && *session != nil {
		res.Screenshot = r.capture(ctx, *session, tc.ID)
	}

	res.EndedAt = r.now()
	res.Duration = res.EndedAt.Sub(res.StartedAt)
	if r.observer != nil {
		r.observer.ObserveCase(res)
	}
	logger.Info("case finished",
		zap.String("status", string(res.Status)),
		zap.Duration("duration", res.Duration),
		zap.String("screenshot", res.Screenshot))
	return res
}

// abort fails the case without a step of its own, e.g. when the session
// cannot be acquired or the run was cancelled between steps.
func abort(res *model.CaseResult, err *model.Error) {
	res.Status = model.StatusFailed
	res.Error = err.Error()
	res.Aborted = true
}

// runStep resolves step once and executes it, retrying retryable failures
// up to MaxAttempts. The step runs detached from ctx cancellation so that an
// action in flight finishes or times out on its own.
func (r *Runner) runStep(ctx context.Context, b platform.Browser, index int, step string) (sr model.StepResult) {
	sr = model.StepResult{Index: index, Step: step, Status: model.StatusRunning}
	start := r.now()
	defer func() { sr.Elapsed = r.now().Sub(start) }()

	stepCtx := context.WithoutCancel(ctx)
	action, err := r.resolver.Resolve(stepCtx, step)
	if err != nil {
		fail(&sr, err)
		return sr
	}
	sr.Action = action.Kind
	sr.Detail = action.String()

	for attempt := 1; ; attempt++ {
		sr.Attempts = attempt
		err = r.executor.Execute(stepCtx, b, action)
		if err == nil || attempt >= r.cfg.MaxAttempts || !model.IsRetryable(model.KindOf(err)) {
			break
		}
		r.logger.Debug("retrying step",
			zap.Int("step", index),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if !sleep(ctx, r.cfg.RetryDelay) {
			break
		}
	}
	if err != nil {
		fail(&sr, err)
		return sr
	}
	sr.Status = model.StatusPassed
	return sr
}

func fail(sr *model.StepResult, err error) {
	sr.Status = model.StatusFailed
	sr.ErrorKind = model.KindOf(err)
	sr.Error = err.Error()
}

// capture saves a screenshot of the failed case and returns its path
// relative to the output dir, or "" when the capture fails.
func (r *Runner) capture(ctx context.Context, b platform.Browser, caseID string) string {
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), screenshotTimeout)
	defer cancel()

	logger := r.logger.With(zap.String("case", caseID))
	data, err := b.Screenshot(shotCtx)
	if err != nil {
		logger.Warn("screenshot capture failed", zap.Error(err))
		return ""
	}

	dir := filepath.Join(r.cfg.OutputDir, ScreenshotDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("screenshot capture failed", zap.Error(err))
		return ""
	}
	name := fmt.Sprintf("%s_%s.png", unsafeNameRe.ReplaceAllString(caseID, "_"), r.now().Format(RunIDLayout))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		logger.Warn("screenshot capture failed", zap.Error(err))
		return ""
	}
	return ScreenshotDir + "/" + name
}
