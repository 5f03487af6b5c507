// Package executor performs one resolved action against a live browser
// session.
package executor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mj1618/stepwright/internal/llm"
	"github.com/mj1618/stepwright/internal/locator"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/platform"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds one action.
	DefaultTimeout = 30 * time.Second

	// MaxWait is the longest fixed wait a step may ask for. A fixed wait
	// runs within its own duration plus the action timeout.
	MaxWait = 5 * time.Minute

	defaultPoll      = 250 * time.Millisecond
	catalogLimit     = 80
	maxPromptRunes   = 4000
	settleAfterClick = 2 * time.Second
)

// Executor drives a platform.Browser to perform actions. It never retries;
// retry belongs to the caller.
type Executor struct {
	client  llm.Client
	timeout time.Duration
	poll    time.Duration
	cache   *SnapshotCache
	logger  *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithClient enables the model-assisted locator and semantic verify.
func WithClient(c llm.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithTimeout sets the per-action timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithPollInterval sets how often wait conditions re-read the page.
func WithPollInterval(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.poll = d
		}
	}
}

// WithCache shares a snapshot cache, e.g. with the MCP server.
func WithCache(c *SnapshotCache) Option {
	return func(e *Executor) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		timeout: DefaultTimeout,
		poll:    defaultPoll,
		cache:   NewSnapshotCache(time.Second),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the per-action timeout.
func (e *Executor) Timeout() time.Duration { return e.timeout }

// Cache returns the snapshot cache.
func (e *Executor) Cache() *SnapshotCache { return e.cache }

// Execute performs action on b within one timeout. Errors are *model.Error
// carrying the failure kind.
func (e *Executor) Execute(ctx context.Context, b platform.Browser, action model.Action) error {
	if err := action.Validate(); err != nil {
		return model.NewError(model.ErrUnresolvedStep, "invalid action", err)
	}
	timeout := e.timeout
	if action.Kind == model.KindWait && action.Duration > 0 {
		if action.Duration > MaxWait {
			return model.Errorf(model.ErrWaitTimeout, "wait of %s exceeds the %s limit", action.Duration, MaxWait)
		}
		timeout += action.Duration
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var err error
	switch action.Kind {
	case model.KindNavigate:
		err = e.navigate(ctx, b, action.URL)
	case model.KindInput:
		err = e.input(ctx, b, action.Target, action.Value)
	case model.KindClick:
		err = e.click(ctx, b, action.Target)
	case model.KindVerify:
		err = e.verify(ctx, b, action.Condition)
	case model.KindWait:
		err = e.wait(ctx, b, action)
	}

	fields := []zap.Field{
		zap.String("action", action.String()),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		e.logger.Debug("action failed", append(fields, zap.Error(err))...)
		return err
	}
	e.logger.Debug("action done", fields...)
	return nil
}

func (e *Executor) navigate(ctx context.Context, b platform.Browser, url string) error {
	defer e.cache.Invalidate(b)
	if err := b.Navigate(ctx, url); err != nil {
		return failure(model.ErrNavigation, fmt.Sprintf("navigate to %s", url), err)
	}
	if err := b.WaitReady(ctx); err != nil {
		return failure(model.ErrNavigation, fmt.Sprintf("%s did not finish loading", url), err)
	}
	return nil
}

func (e *Executor) input(ctx context.Context, b platform.Browser, target, value string) error {
	el, err := e.locate(ctx, b, target, locator.PurposeInput)
	if err != nil {
		return err
	}
	defer e.cache.Invalidate(b)
	if err := b.Fill(ctx, el.Selector, value); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return failure(model.ErrElementNotFound, fmt.Sprintf("input %q disappeared", target), err)
		}
		return failure(model.ErrInputRejected, fmt.Sprintf("input %q rejected the value", target), err)
	}
	return nil
}

func (e *Executor) click(ctx context.Context, b platform.Browser, target string) error {
	el, err := e.locate(ctx, b, target, locator.PurposeClick)
	if err != nil {
		return err
	}
	defer e.cache.Invalidate(b)
	if err := b.Click(ctx, el.Selector); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return failure(model.ErrElementNotFound, fmt.Sprintf("%q disappeared before the click", target), err)
		}
		return failure(model.ErrClickIntercepted, fmt.Sprintf("click on %q was not delivered", target), err)
	}

	// A click may start a navigation; give it a bounded chance to settle.
	settleCtx, cancel := context.WithTimeout(ctx, settleAfterClick)
	defer cancel()
	if err := b.WaitReady(settleCtx); errors.Is(err, platform.ErrSessionLost) {
		return failure(model.ErrInfrastructure, "session lost after click", err)
	}
	return nil
}

// locate finds the element target names, first by the deterministic
// locator and then by asking the model to pick from a numbered catalog.
func (e *Executor) locate(ctx context.Context, b platform.Browser, target string, purpose locator.Purpose) (*model.Element, error) {
	page, err := e.cache.Page(ctx, b)
	if err != nil {
		return nil, failure(model.ErrInfrastructure, "read page", err)
	}
	if el, err := locator.Resolve(page.Elements, target, purpose); err == nil {
		e.logger.Debug("located element",
			zap.String("target", target),
			zap.String("selector", el.Selector))
		return el, nil
	}

	if e.client != nil {
		el, err := e.locateWithModel(ctx, page, target, purpose)
		if err == nil {
			e.logger.Debug("located element by model",
				zap.String("target", target),
				zap.String("selector", el.Selector))
			return el, nil
		}
		return nil, model.NewError(model.ErrElementNotFound, fmt.Sprintf("no element matches %q", target), err)
	}
	return nil, model.Errorf(model.ErrElementNotFound, "no element matches %q", target)
}

const locatePrompt = `You pick elements on a web page for a UI test.
Each candidate is listed as [number] role <tag> followed by its text and attributes.
Reply with the number of the single best candidate and nothing else. Reply 0 if none fits.`

var numberRe = regexp.MustCompile(`\d+`)

func (e *Executor) locateWithModel(ctx context.Context, page Page, target string, purpose locator.Purpose) (*model.Element, error) {
	catalog := locator.Catalog(page.Elements, purpose, catalogLimit)
	if catalog == "" {
		return nil, locator.ErrNoMatch
	}
	what := "click"
	if purpose == locator.PurposeInput {
		what = "type into"
	}
	user := fmt.Sprintf("Element to %s: %q\n\nCandidates:\n%s", what, target, catalog)

	reply, err := e.client.Complete(ctx, locatePrompt, user)
	if err != nil {
		return nil, fmt.Errorf("model locate: %w", err)
	}
	id, err := strconv.Atoi(numberRe.FindString(reply))
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: model reply %q", locator.ErrNoMatch, truncate(reply, 80))
	}
	el := locator.FindByID(page.Elements, id)
	if el == nil {
		return nil, fmt.Errorf("%w: model picked unknown candidate %d", locator.ErrNoMatch, id)
	}
	return el, nil
}

// failure wraps err as kind unless it signals a lost session, which is
// always an infrastructure error.
func failure(kind model.ErrorKind, msg string, err error) error {
	if errors.Is(err, platform.ErrSessionLost) {
		return model.NewError(model.ErrInfrastructure, msg, err)
	}
	return model.NewError(kind, msg, err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// unquote returns the first quoted phrase in s.
func unquote(s string) (string, bool) {
	sub := quotedRe.FindStringSubmatch(s)
	if sub == nil {
		return "", false
	}
	return strings.TrimSpace(sub[1]), true
}
