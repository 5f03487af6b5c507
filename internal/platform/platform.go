package platform

import "context"

// Browser is the capability surface of one live browser session. Selectors
// are CSS selectors. Every call is bounded by ctx.
type Browser interface {
	// Navigate loads url in the current tab.
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until the document has finished loading.
	WaitReady(ctx context.Context) error

	// Snapshot returns the current URL, title, HTML and visible text.
	Snapshot(ctx context.Context) (PageState, error)

	// Click dispatches a click on the element matching selector. It returns
	// ErrNotFound or ErrNotInteractable (covered, disabled, hidden).
	Click(ctx context.Context, selector string) error

	// Fill replaces the value of an editable element. It returns ErrNotFound
	// or ErrNotEditable.
	Fill(ctx context.Context, selector, value string) error

	// Evaluate runs a JavaScript expression and decodes its result into out.
	Evaluate(ctx context.Context, expression string, out interface{}) error

	// Screenshot captures the viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)

	// Ping checks that the session is still alive.
	Ping(ctx context.Context) error

	// Close releases the session.
	Close() error
}

// Launcher starts new browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}
