package chrome

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/mj1618/stepwright/internal/platform"
)

// Launcher starts Chrome sessions, either by launching a local browser or by
// attaching to a running one through its DevTools URL.
type Launcher struct {
	opts platform.LaunchOptions
}

// NewLauncher returns a Launcher for opts.
func NewLauncher(opts platform.LaunchOptions) *Launcher {
	return &Launcher{opts: opts}
}

// Launch starts a new tab. The returned browser owns the allocator and must
// be closed by the caller.
func (l *Launcher) Launch(ctx context.Context) (platform.Browser, error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if l.opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), l.opts.RemoteURL)
	} else {
		allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		allocOpts = append(allocOpts, chromedp.Flag("headless", l.opts.Headless))
		if l.opts.Width > 0 && l.opts.Height > 0 {
			allocOpts = append(allocOpts, chromedp.WindowSize(l.opts.Width, l.opts.Height))
		}
		if l.opts.ExecPath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(l.opts.ExecPath))
		}
		if l.opts.UserAgent != "" {
			allocOpts = append(allocOpts, chromedp.UserAgent(l.opts.UserAgent))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	b := &Browser{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
	}

	setupCtx := ctx
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		setupCtx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	// The first Run allocates the browser and must use the tab context itself:
	// a derived context would tear the browser down when it is cancelled.
	// Instead the whole session is cancelled if the start outlives setupCtx.
	stopWatch := context.AfterFunc(setupCtx, b.cancel)
	err := chromedp.Run(tabCtx)
	if !stopWatch() {
		b.cancel()
		return nil, fmt.Errorf("start browser: %w", context.Cause(setupCtx))
	}
	if err != nil {
		b.cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	setup := []chromedp.Action{network.Enable()}
	if l.opts.Width > 0 && l.opts.Height > 0 {
		setup = append(setup, emulation.SetDeviceMetricsOverride(int64(l.opts.Width), int64(l.opts.Height), 1, false))
	}
	if l.opts.RemoteURL != "" && l.opts.UserAgent != "" {
		setup = append(setup, emulation.SetUserAgentOverride(l.opts.UserAgent))
	}
	if err := b.run(setupCtx, setup...); err != nil {
		b.cancel()
		return nil, fmt.Errorf("configure browser: %w", err)
	}
	return b, nil
}
