package browser

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/aocboard/internal/session"
)

// maxRedirects matches the redirect limit of net/http.
const maxRedirects = 10

// HTTP replays a saved session with a plain HTTP client.
// Each page gets its own cookie jar, the equivalent of a browser context.
type HTTP struct {
	opts     options
	launched bool
	clients  []*resty.Client
}

// NewHTTP creates an HTTP driver.
func NewHTTP(opts ...Option) *HTTP {
	return &HTTP{opts: newOptions(opts)}
}

// Launch prepares the driver. There is no process to start.
func (h *HTTP) Launch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.launched = true
	return nil
}

// NewPage creates a cookie jar seeded from st and a client using it.
func (h *HTTP) NewPage(_ context.Context, st *session.State, hooks Hooks) (Page, error) {
	if !h.launched {
		return nil, ErrNotLaunched
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	p := &httpPage{
		jar:      jar,
		restored: &session.State{},
		visited:  make([]*url.URL, 0),
	}
	if st != nil {
		p.restored = st
		seedJar(jar, st)
	}

	client := resty.New().
		SetTimeout(h.opts.timeout).
		SetCookieJar(jar).
		SetRedirectPolicy(
			resty.FlexibleRedirectPolicy(maxRedirects),
			resty.RedirectPolicyFunc(func(req *http.Request, _ []*http.Request) error {
				// req.Response is the redirect that led to req.
				if req.Response != nil && req.Response.Request != nil {
					hooks.response(req.Response.StatusCode, req.Response.Request.URL.String())
				}
				return nil
			}),
		).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			u := resp.Request.URL
			if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
				u = raw.Request.URL.String()
			}
			hooks.response(resp.StatusCode(), u)
			return nil
		})
	if h.opts.userAgent != "" {
		client.SetHeader("User-Agent", h.opts.userAgent)
	}
	h.clients = append(h.clients, client)
	p.client = client

	return p, nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	for _, c := range h.clients {
		c.GetClient().CloseIdleConnections()
	}
	h.clients = nil
	h.launched = false
	return nil
}

// httpPage implements Page on top of the last HTTP response.
type httpPage struct {
	client *resty.Client
	jar    *cookiejar.Jar

	restored *session.State
	visited  []*url.URL

	url         string
	body        []byte
	contentType string
}

// Navigate fetches url. HTTP error statuses load like any other page,
// as they do in a browser; only transport failures are errors.
func (p *httpPage) Navigate(ctx context.Context, rawURL string) error {
	resp, err := p.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", rawURL, err)
	}

	final := rawURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
		p.remember(raw.Request.URL)
	}

	p.url = final
	p.body = resp.Body()
	if p.body == nil {
		p.body = []byte{}
	}
	p.contentType = resp.Header().Get("Content-Type")
	return nil
}

func (p *httpPage) remember(u *url.URL) {
	for _, v := range p.visited {
		if v.Scheme == u.Scheme && v.Host == u.Host {
			return
		}
	}
	p.visited = append(p.visited, &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"})
}

func (p *httpPage) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.url, nil
}

func (p *httpPage) Wait(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// WaitForURL succeeds only when the page is already at url. Nobody can log in
// through a plain HTTP client, so waiting would only burn the timeout.
func (p *httpPage) WaitForURL(ctx context.Context, target string, _ time.Duration) error {
	current, err := p.URL(ctx)
	if err != nil {
		return err
	}
	if current == target {
		return nil
	}
	return fmt.Errorf("%w (at %s, want %s)", ErrInteractiveLogin, current, target)
}

func (p *httpPage) document() (*goquery.Document, error) {
	if p.body == nil {
		return nil, ErrNoPage
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

func (p *httpPage) FindByText(ctx context.Context, selector, text string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := p.document()
	if err != nil {
		return nil, err
	}

	found := make([]Element, 0)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == text {
			found = append(found, &httpElement{sel: s})
		}
	})
	return found, nil
}

// TextBody returns JSON and plain-text responses unchanged, which is what a
// browser shows inside its <pre> wrapper. HTML pages must contain a <pre>.
func (p *httpPage) TextBody(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.body == nil {
		return "", ErrNoPage
	}
	if isPlainText(p.contentType) {
		return string(p.body), nil
	}

	doc, err := p.document()
	if err != nil {
		return "", err
	}
	pre := doc.Find("pre").First()
	if pre.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoTextBody, p.url)
	}
	return pre.Text(), nil
}

func isPlainText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		strings.HasSuffix(mediaType, "+json") ||
		mediaType == "text/plain"
}

// State exports the restored cookies with their current jar values, plus any
// cookie the visited sites set. Restored cookies the jar no longer holds
// (deleted or expired) are dropped.
func (p *httpPage) State(ctx context.Context) (*session.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := &session.State{
		Cookies: make([]session.Cookie, 0, len(p.restored.Cookies)),
		Origins: p.restored.Origins,
	}
	seen := make(map[string]bool)
	key := func(name, domain string) string {
		return name + "\x00" + strings.TrimPrefix(strings.ToLower(domain), ".")
	}

	for _, c := range p.restored.Cookies {
		u := cookieURL(c)
		if u == nil {
			continue
		}
		for _, jc := range p.jar.Cookies(u) {
			if jc.Name == c.Name {
				c.Value = jc.Value
				st.Cookies = append(st.Cookies, c)
				seen[key(c.Name, c.Domain)] = true
				break
			}
		}
	}

	for _, u := range p.visited {
		for _, jc := range p.jar.Cookies(u) {
			k := key(jc.Name, u.Hostname())
			if seen[k] {
				continue
			}
			seen[k] = true
			st.Cookies = append(st.Cookies, session.Cookie{
				Name:    jc.Name,
				Value:   jc.Value,
				Domain:  u.Hostname(),
				Path:    "/",
				Expires: session.SessionExpiry,
				Secure:  u.Scheme == "https",
			})
		}
	}
	return st, nil
}

type httpElement struct {
	sel *goquery.Selection
}

func (e *httpElement) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

// cookieURL returns a URL the cookie applies to.
func cookieURL(c session.Cookie) *url.URL {
	host := strings.TrimPrefix(c.Domain, ".")
	if host == "" {
		return nil
	}
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	path := c.Path
	if path == "" {
		path = "/"
	}
	return &url.URL{Scheme: scheme, Host: host, Path: path}
}

// seedJar places the saved cookies into jar. Unexpired cookies only; the
// jar itself enforces domain, path and secure matching from here on.
func seedJar(jar *cookiejar.Jar, st *session.State) {
	now := time.Now()
	for _, c := range st.Cookies {
		if c.Expired(now) {
			continue
		}
		u := cookieURL(c)
		if u == nil {
			continue
		}
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		// A leading dot marks a domain cookie. Without it the cookie stays
		// host-only, as the browser stored it.
		if strings.HasPrefix(c.Domain, ".") {
			hc.Domain = c.Domain
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		jar.SetCookies(u, []*http.Cookie{hc})
	}
}
