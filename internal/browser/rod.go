package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/nao1215/aocboard/internal/session"
)

// Rod drives a Chromium instance through the DevTools protocol.
type Rod struct {
	opts options

	launcher *launcher.Launcher
	browser  *rod.Browser

	// contexts are the incognito contexts opened by NewPage.
	contexts []*rod.Browser
}

// NewRod creates a rod driver. The browser window is visible unless
// WithHeadless(true) is given.
func NewRod(opts ...Option) *Rod {
	return &Rod{opts: newOptions(opts)}
}

// Launch starts Chromium and connects to it.
// When no binary is configured, the launcher looks for a local Chromium
// or Chrome and downloads one if none is installed.
func (r *Rod) Launch(ctx context.Context) error {
	l := launcher.New().
		Context(ctx).
		Headless(r.opts.headless)
	if r.opts.bin != "" {
		l = l.Bin(r.opts.bin)
	}
	r.launcher = l

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	r.browser = b

	r.opts.logger.Debug("browser launched", "headless", r.opts.headless, "control_url", controlURL)
	return nil
}

// NewPage opens an incognito context, restores st into it and opens a tab.
func (r *Rod) NewPage(ctx context.Context, st *session.State, hooks Hooks) (Page, error) {
	if r.browser == nil {
		return nil, ErrNotLaunched
	}

	incognito, err := r.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	r.contexts = append(r.contexts, incognito)

	if params := cookieParams(st); len(params) > 0 {
		if err := incognito.SetCookies(params); err != nil {
			return nil, fmt.Errorf("failed to restore session cookies: %w", err)
		}
	}

	p, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	go p.EachEvent(
		func(e *proto.RuntimeConsoleAPICalled) {
			hooks.console(string(e.Type), consoleText(e.Args))
		},
		func(e *proto.NetworkResponseReceived) {
			if e.Response != nil {
				hooks.response(e.Response.Status, e.Response.URL)
			}
		},
	)()

	rp := &rodPage{
		context:      incognito,
		page:         p,
		timeout:      r.opts.timeout,
		pollInterval: r.opts.pollInterval,
	}
	if st != nil {
		rp.origins = st.Origins
	}
	return rp, nil
}

// Close closes every context, the browser and the browser process.
func (r *Rod) Close() error {
	var firstErr error
	for _, c := range r.contexts {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close browser context: %w", err)
		}
	}
	r.contexts = nil

	if r.browser != nil {
		if err := r.browser.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close browser: %w", err)
		}
		r.browser = nil
	}

	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return firstErr
}

// rodPage implements Page on a rod tab.
type rodPage struct {
	context      *rod.Browser
	page         *rod.Page
	timeout      time.Duration
	pollInterval time.Duration

	// origins of the restored state are passed through untouched.
	origins []session.Origin
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

func (p *rodPage) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page URL: %w", err)
	}
	return info.URL, nil
}

func (p *rodPage) Wait(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func (p *rodPage) WaitForURL(ctx context.Context, url string, timeout time.Duration) error {
	return waitForURL(ctx, p.URL, url, timeout, p.pollInterval)
}

func (p *rodPage) FindByText(ctx context.Context, selector, text string) ([]Element, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}

	found := make([]Element, 0)
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("failed to read element text: %w", err)
		}
		if strings.TrimSpace(t) == text {
			found = append(found, &rodElement{el: el})
		}
	}
	return found, nil
}

// TextBody waits for the <pre> element up to the driver timeout.
func (p *rodPage) TextBody(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	el, err := p.page.Context(ctx).Element("pre")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoTextBody, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text body: %w", err)
	}
	return text, nil
}

func (p *rodPage) State(ctx context.Context) (*session.State, error) {
	cookies, err := p.context.Context(ctx).GetCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to export cookies: %w", err)
	}

	st := &session.State{
		Cookies: make([]session.Cookie, 0, len(cookies)),
		Origins: p.origins,
	}
	for _, c := range cookies {
		expires := float64(c.Expires)
		if c.Session {
			expires = session.SessionExpiry
		}
		st.Cookies = append(st.Cookies, session.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return st, nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, fmt.Errorf("failed to read attribute %q: %w", name, err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// cookieParams converts a saved state into DevTools cookie parameters.
// Cookies without a domain cannot be placed and are skipped.
func cookieParams(st *session.State) []*proto.NetworkCookieParam {
	if st == nil {
		return nil
	}
	params := make([]*proto.NetworkCookieParam, 0, len(st.Cookies))
	for _, c := range st.Cookies {
		if c.Domain == "" {
			continue
		}
		param := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if c.SameSite != "" {
			param.SameSite = proto.NetworkCookieSameSite(c.SameSite)
		}
		if c.Expires > 0 {
			param.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		params = append(params, param)
	}
	return params
}

// consoleText joins console arguments the way DevTools prints them.
func consoleText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		switch {
		case a == nil:
		case a.Description != "":
			parts = append(parts, a.Description)
		default:
			parts = append(parts, a.Value.Str())
		}
	}
	return strings.Join(parts, " ")
}
