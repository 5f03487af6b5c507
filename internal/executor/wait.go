package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/platform"
)

// loadWords mark a wait condition that is satisfied by the document
// finishing loading.
var loadWords = []string{"加载", "载入", "完成", "就绪", "load", "loads", "loaded", "loading", "ready"}

// appearSuffixes are stripped from a condition to get the text to wait for.
var appearSuffixes = []string{"出现", "显示", "可见", " to appear", " appears", " is visible"}

func (e *Executor) wait(ctx context.Context, b platform.Browser, action model.Action) error {
	if action.Duration > 0 {
		timer := time.NewTimer(action.Duration)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return model.Errorf(model.ErrWaitTimeout, "wait of %s interrupted", action.Duration)
		}
	}

	cond := action.Condition
	text, quoted := unquote(cond)
	if !quoted {
		if model.ContainsWord(strings.ToLower(cond), loadWords...) {
			return e.waitReady(ctx, b, cond)
		}
		text = cond
		for _, suf := range appearSuffixes {
			text = strings.TrimSuffix(text, suf)
		}
		text = strings.TrimSpace(text)
	}
	// Nothing left to look for, as in "出现": wait for the page to load.
	if text == "" {
		return e.waitReady(ctx, b, cond)
	}
	return e.waitForText(ctx, b, text)
}

func (e *Executor) waitReady(ctx context.Context, b platform.Browser, cond string) error {
	if err := b.WaitReady(ctx); err != nil {
		return failure(model.ErrWaitTimeout, fmt.Sprintf("page did not finish loading for %q", cond), err)
	}
	return nil
}

// waitForText polls the page until text appears in its title or visible text.
func (e *Executor) waitForText(ctx context.Context, b platform.Browser, text string) error {
	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()
	for {
		state, err := b.Snapshot(ctx)
		switch {
		case errors.Is(err, platform.ErrSessionLost):
			return failure(model.ErrWaitTimeout, "read page", err)
		case err == nil && (strings.Contains(state.Text, text) || strings.Contains(state.Title, text)):
			e.cache.Invalidate(b)
			return nil
		}

		select {
		case <-ctx.Done():
			return model.Errorf(model.ErrWaitTimeout, "%q did not appear", text)
		case <-ticker.C:
		}
	}
}
