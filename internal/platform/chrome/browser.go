package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/mj1618/stepwright/internal/platform"
)

// Browser is one Chrome tab driven through chromedp.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
}

var _ platform.Browser = (*Browser)(nil)

// run executes actions on the tab, bounded by both the tab lifetime and ctx.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	if b.ctx.Err() != nil {
		return platform.ErrSessionLost
	}
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && b.ctx.Err() != nil {
		return fmt.Errorf("%w: %v", platform.ErrSessionLost, err)
	}
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	var (
		mu     sync.Mutex
		status int64
	)
	listenCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
			return
		}
		mu.Lock()
		if status == 0 {
			status = resp.Response.Status
		}
		mu.Unlock()
	})

	if err := b.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	mu.Lock()
	defer mu.Unlock()
	if status >= 400 {
		return fmt.Errorf("navigate to %s: http status %d", url, status)
	}
	return nil
}

func (b *Browser) WaitReady(ctx context.Context) error {
	var ready bool
	return b.run(ctx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(`document.readyState === "complete"`, &ready, chromedp.WithPollingInterval(100*time.Millisecond)),
	)
}

func (b *Browser) Snapshot(ctx context.Context) (platform.PageState, error) {
	var state platform.PageState
	err := b.run(ctx,
		chromedp.Location(&state.URL),
		chromedp.Title(&state.Title),
		chromedp.OuterHTML("html", &state.HTML, chromedp.ByQuery),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &state.Text),
	)
	if err != nil {
		return platform.PageState{}, fmt.Errorf("snapshot: %w", err)
	}
	return state, nil
}

func (b *Browser) Click(ctx context.Context, selector string) error {
	if _, err := b.probe(ctx, clickProbe, selector); err != nil {
		return err
	}
	if err := b.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (b *Browser) Fill(ctx context.Context, selector, value string) error {
	state, err := b.probe(ctx, editProbe, selector)
	if err != nil {
		return err
	}

	if state == "contenteditable" {
		err = b.run(ctx,
			chromedp.Focus(selector, chromedp.ByQuery),
			chromedp.Evaluate(fmt.Sprintf(`document.querySelector(%s).textContent = ""`, jsString(selector)), nil),
			chromedp.SendKeys(selector, value, chromedp.ByQuery),
		)
		if err != nil {
			return fmt.Errorf("fill %s: %w", selector, err)
		}
		return nil
	}

	var got string
	err = b.run(ctx,
		chromedp.Focus(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
		chromedp.Value(selector, &got, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	if got != value {
		return fmt.Errorf("%w: %s holds %q after typing %q", platform.ErrNotEditable, selector, got, value)
	}
	return nil
}

func (b *Browser) Evaluate(ctx context.Context, expression string, out interface{}) error {
	return b.run(ctx, chromedp.Evaluate(expression, out))
}

func (b *Browser) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := b.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

func (b *Browser) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var n int
	if err := b.run(ctx, chromedp.Evaluate(`1`, &n)); err != nil {
		return fmt.Errorf("%w: %v", platform.ErrSessionLost, err)
	}
	return nil
}

func (b *Browser) Close() error {
	b.cancel()
	return nil
}

// probe runs one of the element-state scripts and maps its verdict to the
// platform sentinel errors.
func (b *Browser) probe(ctx context.Context, script, selector string) (string, error) {
	var state string
	if err := b.run(ctx, chromedp.Evaluate(fmt.Sprintf(script, jsString(selector)), &state)); err != nil {
		return "", fmt.Errorf("inspect %s: %w", selector, err)
	}
	switch state {
	case "ok", "contenteditable":
		return state, nil
	case "missing":
		return "", fmt.Errorf("%w: %s", platform.ErrNotFound, selector)
	case "hidden", "disabled", "covered":
		return "", fmt.Errorf("%w: %s is %s", platform.ErrNotInteractable, selector, state)
	default:
		return "", fmt.Errorf("%w: %s is %s", platform.ErrNotEditable, selector, state)
	}
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

const clickProbe = `(function(sel) {
	const el = document.querySelector(sel);
	if (!el) return "missing";
	const st = getComputedStyle(el);
	if (st.display === "none" || st.visibility === "hidden") return "hidden";
	if (el.disabled || el.getAttribute("aria-disabled") === "true") return "disabled";
	el.scrollIntoView({block: "center", inline: "center"});
	const r = el.getBoundingClientRect();
	if (r.width === 0 || r.height === 0) return "hidden";
	const top = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
	if (top && top !== el && !el.contains(top)) return "covered";
	return "ok";
})(%s)`

const editProbe = `(function(sel) {
	const el = document.querySelector(sel);
	if (!el) return "missing";
	const st = getComputedStyle(el);
	if (st.display === "none" || st.visibility === "hidden") return "hidden";
	if (el.disabled) return "disabled";
	if (el.readOnly) return "readonly";
	if (el.isContentEditable) return "contenteditable";
	const tag = el.tagName.toLowerCase();
	if (tag === "textarea") return "ok";
	if (tag === "input") {
		const t = (el.getAttribute("type") || "text").toLowerCase();
		if (["checkbox", "radio", "submit", "button", "reset", "image", "file", "hidden", "range", "color"].includes(t)) return "noneditable";
		return "ok";
	}
	return "noneditable";
})(%s)`
