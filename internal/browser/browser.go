package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/aocboard/internal/session"
)

// Driver names accepted by New.
const (
	NameRod  = "rod"
	NameHTTP = "http"
)

// defaultPollInterval is how often WaitForURL checks the page URL.
const defaultPollInterval = 500 * time.Millisecond

var (
	// ErrURLTimeout is returned by WaitForURL when the page did not reach
	// the expected URL in time.
	ErrURLTimeout = errors.New("timed out waiting for page URL")

	// ErrInteractiveLogin is returned by drivers that cannot wait for a
	// person to log in.
	ErrInteractiveLogin = errors.New("driver cannot perform an interactive login: run once with the rod driver to create a session state")

	// ErrNotLaunched is returned when a page is requested before Launch.
	ErrNotLaunched = errors.New("browser is not launched")

	// ErrNoPage is returned when a page operation needs a loaded document.
	ErrNoPage = errors.New("no page loaded")

	// ErrNoTextBody is returned when a page has no plain-text body.
	ErrNoTextBody = errors.New("page has no plain-text body")

	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown browser driver")
)

// Driver launches a browser and opens pages in a session context.
type Driver interface {
	// Launch starts the browser.
	Launch(ctx context.Context) error

	// NewPage creates a session context initialised from st (nil means a
	// fresh, empty context) and opens a page in it.
	NewPage(ctx context.Context, st *session.State, hooks Hooks) (Page, error)

	// Close shuts the browser down. It is safe to call more than once and
	// after a failed Launch.
	Close() error
}

// Page is a single browser tab.
type Page interface {
	// Navigate loads url and waits until the document is loaded.
	Navigate(ctx context.Context, url string) error

	// URL returns the current page URL.
	URL(ctx context.Context) (string, error)

	// Wait pauses for d or until ctx is done.
	Wait(ctx context.Context, d time.Duration) error

	// WaitForURL blocks until the page URL equals url or timeout elapses.
	WaitForURL(ctx context.Context, url string, timeout time.Duration) error

	// FindByText returns the elements matching selector whose visible text,
	// trimmed of surrounding white space, equals text. Document order is kept.
	FindByText(ctx context.Context, selector, text string) ([]Element, error)

	// TextBody returns the plain-text body of the page: the inner text of
	// its <pre> element, as a browser renders a JSON or text resource.
	TextBody(ctx context.Context) (string, error)

	// State exports the session state of the page's context.
	State(ctx context.Context) (*session.State, error)
}

// Element is an element found on a page.
type Element interface {
	// Attribute returns the value of the named attribute and whether the
	// element has it.
	Attribute(ctx context.Context, name string) (string, bool, error)
}

// Hooks receive page events. Nil fields are ignored.
type Hooks struct {
	// OnConsole is called for every console message of the page.
	OnConsole func(kind, text string)

	// OnResponse is called for every HTTP response the page receives.
	OnResponse func(status int, url string)
}

func (h Hooks) console(kind, text string) {
	if h.OnConsole != nil {
		h.OnConsole(kind, text)
	}
}

func (h Hooks) response(status int, url string) {
	if h.OnResponse != nil {
		h.OnResponse(status, url)
	}
}

// options are shared by both drivers.
type options struct {
	headless     bool
	bin          string
	timeout      time.Duration
	userAgent    string
	pollInterval time.Duration
	logger       *slog.Logger
}

// Option configures a Driver.
type Option func(*options)

// WithHeadless hides the browser window. Ignored by the HTTP driver.
func WithHeadless(headless bool) Option {
	return func(o *options) {
		o.headless = headless
	}
}

// WithBrowserBin sets the Chromium binary. Ignored by the HTTP driver.
func WithBrowserBin(bin string) Option {
	return func(o *options) {
		o.bin = bin
	}
}

// WithTimeout bounds a single navigation or text read.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header. Ignored by the rod driver,
// which keeps the browser's own header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithPollInterval sets how often WaitForURL checks the page URL.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithLogger sets the logger for driver diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{
		timeout:      30 * time.Second,
		pollInterval: defaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.pollInterval <= 0 {
		o.pollInterval = defaultPollInterval
	}
	return o
}

// New returns the driver registered under name.
func New(name string, opts ...Option) (Driver, error) {
	switch name {
	case NameRod:
		return NewRod(opts...), nil
	case NameHTTP:
		return NewHTTP(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// waitForURL polls current until it returns target.
// Errors from current are treated as "not there yet": the page may be
// in the middle of a navigation.
func waitForURL(ctx context.Context, current func(context.Context) (string, error), target string, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		if u, err := current(ctx); err == nil {
			if u == target {
				return nil
			}
			last = u
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: want %s, still at %s after %s", ErrURLTimeout, target, last, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
