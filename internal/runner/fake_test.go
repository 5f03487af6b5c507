package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/platform"
)

type fakeBrowser struct {
	id      int
	dead    atomic.Bool
	shotErr error
	inUse   atomic.Int32
	overlap atomic.Bool
	closed  atomic.Bool
}

func (f *fakeBrowser) Navigate(context.Context, string) error { return nil }
func (f *fakeBrowser) WaitReady(context.Context) error        { return nil }
func (f *fakeBrowser) Snapshot(context.Context) (platform.PageState, error) {
	return platform.PageState{}, nil
}
func (f *fakeBrowser) Click(context.Context, string) error                 { return nil }
func (f *fakeBrowser) Fill(context.Context, string, string) error          { return nil }
func (f *fakeBrowser) Evaluate(context.Context, string, interface{}) error { return nil }

func (f *fakeBrowser) Screenshot(context.Context) ([]byte, error) {
	if f.shotErr != nil {
		return nil, f.shotErr
	}
	if f.dead.Load() {
		return nil, platform.ErrSessionLost
	}
	return []byte("\x89PNG fake"), nil
}

func (f *fakeBrowser) Ping(context.Context) error {
	if f.dead.Load() {
		return platform.ErrSessionLost
	}
	return nil
}

func (f *fakeBrowser) Close() error {
	f.closed.Store(true)
	return nil
}

// fakeLauncher hands out a new fakeBrowser per Launch.
type fakeLauncher struct {
	mu       sync.Mutex
	browsers []*fakeBrowser
	failures int
	shotErr  error
}

func (l *fakeLauncher) Launch(context.Context) (platform.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures > 0 {
		l.failures--
		return nil, errors.New("chrome failed to start")
	}
	b := &fakeBrowser{id: len(l.browsers) + 1, shotErr: l.shotErr}
	l.browsers = append(l.browsers, b)
	return b, nil
}

func (l *fakeLauncher) launched() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.browsers)
}

// executorFunc adapts a function to ActionExecutor.
type executorFunc func(ctx context.Context, b platform.Browser, action model.Action) error

func (f executorFunc) Execute(ctx context.Context, b platform.Browser, action model.Action) error {
	return f(ctx, b, action)
}

// passAll executes every action successfully.
var passAll = executorFunc(func(context.Context, platform.Browser, model.Action) error { return nil })

// failOn fails every action whose target or condition equals target.
func failOn(target string, kind model.ErrorKind) executorFunc {
	return func(_ context.Context, _ platform.Browser, a model.Action) error {
		if a.Target == target || a.Condition == target {
			return model.Errorf(kind, "%s failed", target)
		}
		return nil
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	steps []model.StepResult
	cases []model.CaseResult
}

func (o *recordingObserver) ObserveStep(s model.StepResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.steps = append(o.steps, s)
}

func (o *recordingObserver) ObserveCase(c model.CaseResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cases = append(o.cases, c)
}
