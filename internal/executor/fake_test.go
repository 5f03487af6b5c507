package executor

import (
	"context"
	"sync"

	"github.com/mj1618/stepwright/internal/platform"
)

// fakeBrowser is an in-memory Browser. Text returned by Snapshot switches to
// laterText after revealAfter snapshots when revealAfter > 0.
type fakeBrowser struct {
	mu sync.Mutex

	state       platform.PageState
	laterText   string
	revealAfter int

	navErr      error
	readyErr    error
	snapshotErr error
	clickErr    error
	fillErr     error

	snapshots int
	navigated []string
	clicked   []string
	filled    map[string]string
}

func newFakeBrowser(html string) *fakeBrowser {
	return &fakeBrowser{
		state:  platform.PageState{URL: "https://www.baidu.com/", Title: "百度一下，你就知道", HTML: html},
		filled: make(map[string]string),
	}
}

func (f *fakeBrowser) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.navErr != nil {
		return f.navErr
	}
	f.navigated = append(f.navigated, url)
	f.state.URL = url
	return nil
}

func (f *fakeBrowser) WaitReady(ctx context.Context) error {
	if f.readyErr != nil {
		return f.readyErr
	}
	return ctx.Err()
}

func (f *fakeBrowser) Snapshot(context.Context) (platform.PageState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshotErr != nil {
		return platform.PageState{}, f.snapshotErr
	}
	f.snapshots++
	if f.revealAfter > 0 && f.snapshots > f.revealAfter {
		f.state.Text = f.laterText
	}
	return f.state, nil
}

func (f *fakeBrowser) Click(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicked = append(f.clicked, selector)
	return nil
}

func (f *fakeBrowser) Fill(_ context.Context, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fillErr != nil {
		return f.fillErr
	}
	f.filled[selector] = value
	return nil
}

func (f *fakeBrowser) Evaluate(context.Context, string, interface{}) error { return nil }
func (f *fakeBrowser) Screenshot(context.Context) ([]byte, error)          { return []byte("png"), nil }
func (f *fakeBrowser) Ping(context.Context) error                          { return nil }
func (f *fakeBrowser) Close() error                                        { return nil }
