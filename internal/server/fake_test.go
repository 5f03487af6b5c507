package server

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mj1618/stepwright/internal/platform"
)

const examplePage = `<html><head><title>Example Domain</title></head><body>
<h1>Example Domain</h1>
<label for="q">Search</label><input id="q" name="q" type="text">
<button id="go">Go</button>
<a href="/more">More information</a>
<button id="secret" hidden>Secret</button>
</body></html>`

type fakeBrowser struct {
	mu        sync.Mutex
	state     platform.PageState
	dead      atomic.Bool
	closed    atomic.Bool
	snapshots int
	clicked   []string
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{state: platform.PageState{
		URL:   "about:blank",
		Title: "Example Domain",
		HTML:  examplePage,
		Text:  "Example Domain Search Go More information",
	}}
}

func (f *fakeBrowser) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.URL = url
	return nil
}

func (f *fakeBrowser) WaitReady(ctx context.Context) error { return ctx.Err() }

func (f *fakeBrowser) Snapshot(context.Context) (platform.PageState, error) {
	if f.dead.Load() {
		return platform.PageState{}, platform.ErrSessionLost
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	return f.state, nil
}

func (f *fakeBrowser) Click(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicked = append(f.clicked, selector)
	return nil
}

func (f *fakeBrowser) Fill(context.Context, string, string) error          { return nil }
func (f *fakeBrowser) Evaluate(context.Context, string, interface{}) error { return nil }

func (f *fakeBrowser) Screenshot(context.Context) ([]byte, error) {
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

type fakeLauncher struct {
	mu       sync.Mutex
	browsers []*fakeBrowser
}

func (l *fakeLauncher) Launch(context.Context) (platform.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := newFakeBrowser()
	l.browsers = append(l.browsers, b)
	return b, nil
}

func (l *fakeLauncher) launched() []*fakeBrowser {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*fakeBrowser(nil), l.browsers...)
}
