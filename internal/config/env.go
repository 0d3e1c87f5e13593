package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables recognized by ApplyEnv.
const (
	// EnvDebug enables debug output with "1" or "true".
	EnvDebug = "DEBUG"

	// EnvLogLevel enables debug output with "debug".
	EnvLogLevel = "LOG_LEVEL"

	// EnvWaitOnEmptyMS is the pause in milliseconds when no link is found.
	EnvWaitOnEmptyMS = "WAIT_ON_EMPTY_MS"

	// EnvWaitBeforeScrapeMS overrides the grace period in milliseconds.
	EnvWaitBeforeScrapeMS = "WAIT_BEFORE_SCRAPE_MS"

	EnvYear           = "AOCBOARD_YEAR"
	EnvSiteRoot       = "AOCBOARD_SITE_ROOT"
	EnvJSONDir        = "AOCBOARD_JSON_DIR"
	EnvStateFile      = "AOCBOARD_STATE_FILE"
	EnvDriver         = "AOCBOARD_DRIVER"
	EnvHeadless       = "AOCBOARD_HEADLESS"
	EnvBrowserBin     = "AOCBOARD_BROWSER_BIN"
	EnvLoginTimeoutMS = "AOCBOARD_LOGIN_TIMEOUT_MS"

	// EnvConfigFile points at an explicit configuration file.
	EnvConfigFile = "AOCBOARD_CONFIG"
)

// DefaultDotEnvFile is the dotenv file read from the working directory.
const DefaultDotEnvFile = ".env"

// LookupFunc returns the value of an environment variable and whether it is set.
// os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv reads a dotenv file without touching the process environment.
// A missing file is not an error and yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// EnvLookup returns a LookupFunc that consults the process environment first
// and falls back to the given dotenv values.
func EnvLookup(dotenv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv overrides cfg with the recognized environment variables.
// Empty values are treated as unset. Malformed numbers or booleans
// return an error wrapping ErrInvalidEnv.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := get(EnvDebug); ok && (v == "1" || v == "true") {
		cfg.Verbose = true
	}
	if v, ok := get(EnvLogLevel); ok && v == "debug" {
		cfg.Verbose = true
	}

	if v, ok := get(EnvWaitOnEmptyMS); ok {
		d, err := parseMillis(EnvWaitOnEmptyMS, v)
		if err != nil {
			return err
		}
		cfg.WaitOnEmpty = d
	}
	if v, ok := get(EnvWaitBeforeScrapeMS); ok {
		d, err := parseMillis(EnvWaitBeforeScrapeMS, v)
		if err != nil {
			return err
		}
		cfg.GraceWait = d
	}
	if v, ok := get(EnvLoginTimeoutMS); ok {
		d, err := parseMillis(EnvLoginTimeoutMS, v)
		if err != nil {
			return err
		}
		cfg.LoginTimeout = d
	}

	if v, ok := get(EnvYear); ok {
		cfg.Year = v
	}
	if v, ok := get(EnvSiteRoot); ok {
		cfg.SiteRoot = v
	}
	if v, ok := get(EnvJSONDir); ok {
		cfg.JSONDir = v
	}
	if v, ok := get(EnvStateFile); ok {
		cfg.StateFile = v
	}
	if v, ok := get(EnvDriver); ok {
		cfg.Driver = v
	}
	if v, ok := get(EnvBrowserBin); ok {
		cfg.BrowserBin = v
	}
	if v, ok := get(EnvHeadless); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidEnv, EnvHeadless, v)
		}
		cfg.Headless = b
	}

	return nil
}

// parseMillis parses a whole number of milliseconds.
func parseMillis(key, value string) (time.Duration, error) {
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number of milliseconds", ErrInvalidEnv, key, value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
