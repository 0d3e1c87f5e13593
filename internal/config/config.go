package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// A run without any configuration uses exactly these values.
const (
	// DefaultYear is the Advent of Code event whose private leaderboards are downloaded.
	DefaultYear = "2025"

	// DefaultSiteRoot is the site all leaderboard and resource paths are resolved against.
	DefaultSiteRoot = "https://adventofcode.com"

	// DefaultJSONDir is the directory (relative to the working directory)
	// that receives the downloaded leaderboard JSON files.
	DefaultJSONDir = "json"

	// DefaultStateFile is the session-state file (relative to the working directory).
	// It is read at startup when present and written only after a manual login.
	DefaultStateFile = "cookies.json"

	// DefaultLinkText is the exact visible text of the anchors that point at
	// a private leaderboard.
	DefaultLinkText = "[View]"

	// DefaultLinkSelector restricts the text search to anchor elements.
	DefaultLinkSelector = "a"

	// DefaultResourceSuffix is appended to every discovered link path to
	// obtain the JSON API resource of that leaderboard.
	DefaultResourceSuffix = ".json"

	// DefaultGraceWait is the pause after the first navigation. It gives the
	// user a moment to look at the page before it is scanned.
	DefaultGraceWait = 10 * time.Second

	// DefaultLoginTimeout bounds the wait for a manual login to land back on
	// the leaderboard page. After it elapses the run fails.
	DefaultLoginTimeout = 10 * time.Minute

	// DefaultWaitOnEmpty is the pause when no leaderboard link is found.
	// Zero means no pause.
	DefaultWaitOnEmpty = time.Duration(0)

	// DefaultTimeout bounds a single navigation or text read.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent by the HTTP driver.
	// Advent of Code asks automated tools to identify themselves.
	DefaultUserAgent = "aocboard (+https://github.com/nao1215/aocboard)"

	// AppName is the application name used for XDG directory paths.
	AppName = "aocboard"
)

// Driver names accepted by Config.Driver.
const (
	// DriverRod drives a real Chromium instance through the DevTools protocol.
	DriverRod = "rod"

	// DriverHTTP replays the saved session cookies with a plain HTTP client.
	// It cannot perform an interactive login.
	DriverHTTP = "http"
)

// Config holds all configuration options for a download run.
// It replaces module-level constants: it is built once at startup
// (defaults, then config file, then environment) and passed into the procedure.
type Config struct {
	// Year is the event year, e.g. "2025". It is part of the leaderboard URL
	// and of every output file name.
	Year string

	// SiteRoot is the scheme and host every path is resolved against,
	// without a trailing slash.
	SiteRoot string

	// JSONDir is the output directory. It is created when missing.
	JSONDir string

	// StateFile is the path of the persisted session state.
	StateFile string

	// LinkText is the exact visible text of leaderboard anchors.
	LinkText string

	// LinkSelector is the CSS selector of the elements whose text is compared
	// against LinkText.
	LinkSelector string

	// ResourceSuffix is appended to each discovered link path.
	ResourceSuffix string

	// GraceWait is the pause after navigating to the leaderboard page.
	GraceWait time.Duration

	// LoginTimeout bounds the wait for a manual login.
	LoginTimeout time.Duration

	// WaitOnEmpty is the pause when no link was found. Zero disables it.
	WaitOnEmpty time.Duration

	// Timeout bounds a single navigation or text read.
	Timeout time.Duration

	// Verbose enables debug logging, including in-page console messages
	// and HTTP responses of leaderboard requests.
	Verbose bool

	// Driver selects the browser implementation: DriverRod or DriverHTTP.
	Driver string

	// Headless hides the browser window. The default is a visible window
	// because the first run needs a manual login.
	Headless bool

	// BrowserBin is an explicit Chromium binary. Empty lets the launcher
	// find or download one.
	BrowserBin string

	// UserAgent is the User-Agent header of the HTTP driver.
	UserAgent string

	// ConfigFilePath is the configuration file in use, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Year:           DefaultYear,
		SiteRoot:       DefaultSiteRoot,
		JSONDir:        DefaultJSONDir,
		StateFile:      DefaultStateFile,
		LinkText:       DefaultLinkText,
		LinkSelector:   DefaultLinkSelector,
		ResourceSuffix: DefaultResourceSuffix,
		GraceWait:      DefaultGraceWait,
		LoginTimeout:   DefaultLoginTimeout,
		WaitOnEmpty:    DefaultWaitOnEmpty,
		Timeout:        DefaultTimeout,
		Driver:         DriverRod,
		UserAgent:      DefaultUserAgent,
	}
}

// LeaderboardURL returns the private leaderboard page of the configured year,
// e.g. "https://adventofcode.com/2025/leaderboard/private".
func (c *Config) LeaderboardURL() string {
	return c.SiteRoot + "/" + c.Year + "/leaderboard/private"
}

// ResourceURL resolves a site-relative resource path against SiteRoot.
// The path is appended verbatim, the same way the page links are written.
func (c *Config) ResourceURL(path string) string {
	return c.SiteRoot + path
}

// XDGConfigDir returns the XDG config directory for aocboard.
// On Linux: ~/.config/aocboard
// On macOS: ~/Library/Application Support/aocboard
// On Windows: %APPDATA%\aocboard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package sentinel errors.
func (c *Config) Validate() error {
	if !isYear(c.Year) {
		return ErrInvalidYear
	}

	u, err := url.Parse(c.SiteRoot)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidSiteRoot
	}
	if strings.HasSuffix(c.SiteRoot, "/") {
		return ErrInvalidSiteRoot
	}

	if c.JSONDir == "" {
		return ErrEmptyJSONDir
	}
	if c.StateFile == "" {
		return ErrEmptyStateFile
	}
	if c.LinkText == "" || c.LinkSelector == "" {
		return ErrEmptyLinkText
	}

	if c.GraceWait < 0 || c.WaitOnEmpty < 0 {
		return ErrInvalidWait
	}
	if c.LoginTimeout <= 0 {
		return ErrInvalidLoginTimeout
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	switch c.Driver {
	case DriverRod, DriverHTTP:
	default:
		return ErrUnknownDriver
	}

	return nil
}

// isYear reports whether s is a four digit year.
func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
