package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by Load when the state file does not exist.
var ErrNotFound = errors.New("session state file not found")

// SessionExpiry is the Expires value of a cookie that lives until the browser closes.
const SessionExpiry = -1

// State is the persisted authentication state of a browser context.
type State struct {
	// Cookies are the browser cookies of every site visited.
	Cookies []Cookie `json:"cookies"`

	// Origins holds per-origin local storage. It is round-tripped untouched;
	// the leaderboard pages do not use it.
	Origins []Origin `json:"origins"`
}

// Cookie is a single browser cookie.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`

	// Expires is the expiry as Unix time in seconds, or SessionExpiry.
	Expires float64 `json:"expires"`

	HTTPOnly bool `json:"httpOnly"`
	Secure   bool `json:"secure"`

	// SameSite is "Strict", "Lax", "None" or empty.
	SameSite string `json:"sameSite,omitempty"`
}

// Origin is the local storage of one origin.
type Origin struct {
	Origin       string      `json:"origin"`
	LocalStorage []NameValue `json:"localStorage"`
}

// NameValue is a local storage entry.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Exists reports whether a state file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the state file at path.
// It returns ErrNotFound when the file does not exist.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode session state %s: %w", path, err)
	}
	return &st, nil
}

// Save writes st to path, replacing any previous file.
// Parent directories are created. The file is readable by the owner only
// because it holds the session cookie.
func Save(path string, st *State) error {
	if st == nil {
		st = &State{}
	}
	if st.Cookies == nil {
		st.Cookies = []Cookie{}
	}
	if st.Origins == nil {
		st.Origins = []Origin{}
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create session state directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	return nil
}

// Len returns the number of cookies in the state. A nil state has none.
func (st *State) Len() int {
	if st == nil {
		return 0
	}
	return len(st.Cookies)
}

// CookiesFor returns the cookies a browser would send to u at time now:
// the domain must match (a leading dot or a non-host-only domain also
// matches subdomains), the path must be a prefix, secure cookies require
// https, and expired cookies are dropped.
func (st *State) CookiesFor(u *url.URL, now time.Time) []Cookie {
	if st == nil || u == nil {
		return nil
	}

	host := strings.ToLower(u.Hostname())
	reqPath := u.EscapedPath()
	if reqPath == "" {
		reqPath = "/"
	}

	matched := make([]Cookie, 0, len(st.Cookies))
	for _, c := range st.Cookies {
		if c.Expired(now) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		if !domainMatch(host, c.Domain) || !pathMatch(reqPath, c.Path) {
			continue
		}
		matched = append(matched, c)
	}
	return matched
}

// Expired reports whether the cookie has expired at now.
// Session cookies never expire while the state is in use.
func (c Cookie) Expired(now time.Time) bool {
	if c.Expires <= 0 {
		return false
	}
	return float64(now.Unix()) >= c.Expires
}

// domainMatch implements cookie domain matching.
func domainMatch(host, domain string) bool {
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	if domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// pathMatch implements cookie path matching.
func pathMatch(reqPath, cookiePath string) bool {
	if cookiePath == "" || cookiePath == "/" {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return len(reqPath) == len(cookiePath) ||
		strings.HasSuffix(cookiePath, "/") ||
		reqPath[len(cookiePath)] == '/'
}
