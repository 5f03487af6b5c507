// Package resolver maps one natural-language step to a typed browser action.
package resolver

import (
	"context"
	"time"

	"github.com/mj1618/stepwright/internal/llm"
	"github.com/mj1618/stepwright/internal/model"
	"go.uber.org/zap"
)

// Resolver classifies steps by keyword and falls back to a language model
// for phrasing the keyword taxonomy cannot parameterize.
type Resolver struct {
	client  llm.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Resolver. client may be nil, in which case steps that need
// the model fail with UnresolvedStep.
func New(client llm.Client, opts ...Option) *Resolver {
	r := &Resolver{client: client, timeout: 30 * time.Second, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns exactly one action for step, or an error of kind
// UnresolvedStep or ResolutionFailure. It never touches the browser and makes
// at most one model call.
func (r *Resolver) Resolve(ctx context.Context, step string) (model.Action, error) {
	s := normalize(step)
	if s == "" {
		return model.Action{}, model.NewError(model.ErrUnresolvedStep, "empty step", nil)
	}

	m, ok := classify(s)
	if ok {
		if action, ok := extract(s, m); ok {
			action.Source = model.SourceKeyword
			r.logger.Debug("resolved by keyword",
				zap.String("step", step),
				zap.String("action", action.String()))
			return action, nil
		}
	}

	if r.client == nil {
		if ok {
			return model.Action{}, model.Errorf(model.ErrUnresolvedStep,
				"%s step %q needs a parameter that could not be extracted and no model is configured", m.kind, step)
		}
		return model.Action{}, model.Errorf(model.ErrUnresolvedStep, "no action keyword in %q and no model is configured", step)
	}

	var hint model.Kind
	if ok {
		hint = m.kind
	}
	action, err := r.resolveWithModel(ctx, step, hint)
	if err != nil {
		r.logger.Warn("model resolution failed", zap.String("step", step), zap.Error(err))
		return model.Action{}, err
	}
	r.logger.Debug("resolved by model",
		zap.String("step", step),
		zap.String("model", r.client.ModelName()),
		zap.String("action", action.String()))
	return action, nil
}

// Resolve is a convenience wrapper around New(client).Resolve.
func Resolve(ctx context.Context, client llm.Client, step string) (model.Action, error) {
	return New(client).Resolve(ctx, step)
}
