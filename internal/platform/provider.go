package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when no browser backend is registered.
	ErrUnsupported = fmt.Errorf("no browser backend registered; import internal/platform/chrome")

	// ErrNotFound means no element matched the selector.
	ErrNotFound = errors.New("element not found")

	// ErrNotInteractable means the element exists but cannot receive a click.
	ErrNotInteractable = errors.New("element not interactable")

	// ErrNotEditable means the element exists but does not accept input.
	ErrNotEditable = errors.New("element not editable")

	// ErrSessionLost means the browser process or tab is gone.
	ErrSessionLost = errors.New("browser session lost")
)

// NewLauncherFunc is set by backend packages via init().
// See internal/platform/chrome for the chromedp registration.
var NewLauncherFunc func(opts LaunchOptions) (Launcher, error)

// NewLauncher returns a Launcher for the registered backend.
func NewLauncher(opts LaunchOptions) (Launcher, error) {
	if NewLauncherFunc == nil {
		return nil, ErrUnsupported
	}
	return NewLauncherFunc(opts)
}
