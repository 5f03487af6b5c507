package model

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
	err := NewError(ErrElementNotFound, "no element matching \"q\"", nil)
	if got := KindOf(err); got != ErrElementNotFound {
		t.Errorf("KindOf = %q", got)
	}
	wrapped := fmt.Errorf("step 2: %w", err)
	if got := KindOf(wrapped); got != ErrElementNotFound {
		t.Errorf("KindOf(wrapped) = %q", got)
	}
	if got := KindOf(errors.New("boom")); got != ErrInfrastructure {
		t.Errorf("untyped error should be infrastructure, got %q", got)
	}
}

func TestErrorf_WrapsCause(t *testing.T) {
	err := Errorf(ErrNavigation, "load %s: %w", "https://x.test", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be unwrappable")
	}
	want := "NavigationError: load https://x.test: context deadline exceeded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsStepLevel(t *testing.T) {
	stepLevel := []ErrorKind{
		ErrUnresolvedStep, ErrResolutionFailure, ErrElementNotFound, ErrClickIntercepted,
		ErrInputRejected, ErrNavigation, ErrAssertionFailed, ErrWaitTimeout,
	}
	for _, k := range stepLevel {
		if !IsStepLevel(k) {
			t.Errorf("%s should be step-level", k)
		}
	}
	for _, k := range []ErrorKind{ErrInfrastructure, ErrReportWrite, ""} {
		if IsStepLevel(k) {
			t.Errorf("%q should not be step-level", k)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrElementNotFound) || !IsRetryable(ErrClickIntercepted) {
		t.Error("element lookups should be retryable")
	}
	if IsRetryable(ErrAssertionFailed) || IsRetryable(ErrInfrastructure) || IsRetryable(ErrResolutionFailure) {
		t.Error("assertion, infrastructure and resolution failures must not be retried")
	}
}
