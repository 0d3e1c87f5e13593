package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and ApplyEnv so callers can
// use errors.Is() while still printing a readable message.
var (
	// ErrInvalidYear is returned when the year is not four digits.
	ErrInvalidYear = errors.New("invalid year: must be four digits (e.g. 2025)")

	// ErrInvalidSiteRoot is returned when the site root is not an absolute
	// http(s) URL without a trailing slash.
	ErrInvalidSiteRoot = errors.New("invalid site root: must be an absolute http(s) URL without trailing slash")

	// ErrEmptyJSONDir is returned when no output directory is configured.
	ErrEmptyJSONDir = errors.New("invalid json dir: must not be empty")

	// ErrEmptyStateFile is returned when no session-state file is configured.
	ErrEmptyStateFile = errors.New("invalid state file: must not be empty")

	// ErrEmptyLinkText is returned when the link marker or selector is empty.
	// An empty marker would match every anchor on the page.
	ErrEmptyLinkText = errors.New("invalid link marker: text and selector must not be empty")

	// ErrInvalidWait is returned when a wait duration is negative.
	ErrInvalidWait = errors.New("invalid wait: must be non-negative")

	// ErrInvalidLoginTimeout is returned when the login timeout is not positive.
	ErrInvalidLoginTimeout = errors.New("invalid login timeout: must be positive")

	// ErrInvalidTimeout is returned when the navigation timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrUnknownDriver is returned for a driver other than "rod" or "http".
	ErrUnknownDriver = errors.New("unknown driver: must be \"rod\" or \"http\"")

	// ErrInvalidEnv is returned when an environment variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
