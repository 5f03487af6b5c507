package platform

import (
	"context"
	"sync"
	"time"
)

// PageState is a point-in-time view of the current page.
type PageState struct {
	URL   string `yaml:"url"   json:"url"`
	Title string `yaml:"title" json:"title"`
	HTML  string `yaml:"-"     json:"-"`
	Text  string `yaml:"-"     json:"-"`
}

// LaunchOptions configures how a browser session is started.
type LaunchOptions struct {
	Headless  bool          // Run without a visible window
	RemoteURL string        // Attach to an existing DevTools endpoint instead of launching
	ExecPath  string        // Browser binary (empty = auto-detect)
	Width     int           // Viewport width in CSS pixels
	Height    int           // Viewport height in CSS pixels
	UserAgent string        // Override the user agent (empty = default)
	Timeout   time.Duration // Bound on launching the session
}

// DefaultLaunchOptions returns headless 1280x800.
func DefaultLaunchOptions() LaunchOptions {
	return LaunchOptions{Headless: true, Width: 1280, Height: 800, Timeout: 30 * time.Second}
}

// SingleSession adapts one already-open Browser to the Launcher interface.
// The first Launch hands out the wrapped browser; later calls return it again
// only if it still answers Ping, otherwise ErrSessionLost.
type SingleSession struct {
	mu      sync.Mutex
	browser Browser
}

// NewSingleSession wraps b.
func NewSingleSession(b Browser) *SingleSession {
	return &SingleSession{browser: b}
}

func (s *SingleSession) Launch(ctx context.Context) (Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil, ErrSessionLost
	}
	if err := s.browser.Ping(ctx); err != nil {
		return nil, ErrSessionLost
	}
	return s.browser, nil
}
