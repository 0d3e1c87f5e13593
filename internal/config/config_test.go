package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// mapLookup adapts a map to LookupFunc for tests.
func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changing a default must be intentional, so each one is pinned here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default year is 2025", func(t *testing.T) {
		t.Parallel()
		if cfg.Year != "2025" {
			t.Errorf("expected Year to be '2025', got %q", cfg.Year)
		}
	})

	t.Run("default paths are relative", func(t *testing.T) {
		t.Parallel()
		if cfg.JSONDir != "json" {
			t.Errorf("expected JSONDir 'json', got %q", cfg.JSONDir)
		}
		if cfg.StateFile != "cookies.json" {
			t.Errorf("expected StateFile 'cookies.json', got %q", cfg.StateFile)
		}
	})

	t.Run("default marker is [View]", func(t *testing.T) {
		t.Parallel()
		if cfg.LinkText != "[View]" {
			t.Errorf("expected LinkText '[View]', got %q", cfg.LinkText)
		}
		if cfg.ResourceSuffix != ".json" {
			t.Errorf("expected ResourceSuffix '.json', got %q", cfg.ResourceSuffix)
		}
	})

	t.Run("default waits", func(t *testing.T) {
		t.Parallel()
		if cfg.GraceWait != 10*time.Second {
			t.Errorf("expected GraceWait 10s, got %v", cfg.GraceWait)
		}
		if cfg.LoginTimeout != 10*time.Minute {
			t.Errorf("expected LoginTimeout 10m, got %v", cfg.LoginTimeout)
		}
		if cfg.WaitOnEmpty != 0 {
			t.Errorf("expected WaitOnEmpty 0, got %v", cfg.WaitOnEmpty)
		}
	})

	t.Run("default browser is a visible rod browser", func(t *testing.T) {
		t.Parallel()
		if cfg.Driver != DriverRod {
			t.Errorf("expected Driver %q, got %q", DriverRod, cfg.Driver)
		}
		if cfg.Headless {
			t.Error("expected Headless to be false")
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to validate, got %v", err)
		}
	})
}

func TestLeaderboardURL(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if got := cfg.LeaderboardURL(); got != "https://adventofcode.com/2025/leaderboard/private" {
		t.Errorf("unexpected leaderboard URL %q", got)
	}

	cfg.Year = "2024"
	cfg.SiteRoot = "http://127.0.0.1:8080"
	if got := cfg.LeaderboardURL(); got != "http://127.0.0.1:8080/2024/leaderboard/private" {
		t.Errorf("unexpected leaderboard URL %q", got)
	}

	if got := cfg.ResourceURL("/2024/leaderboard/private/view/1.json"); got != "http://127.0.0.1:8080/2024/leaderboard/private/view/1.json" {
		t.Errorf("unexpected resource URL %q", got)
	}
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case breaks exactly one rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"short year", func(c *Config) { c.Year = "25" }, ErrInvalidYear},
		{"non numeric year", func(c *Config) { c.Year = "20x5" }, ErrInvalidYear},
		{"relative site root", func(c *Config) { c.SiteRoot = "adventofcode.com" }, ErrInvalidSiteRoot},
		{"ftp site root", func(c *Config) { c.SiteRoot = "ftp://adventofcode.com" }, ErrInvalidSiteRoot},
		{"trailing slash", func(c *Config) { c.SiteRoot = "https://adventofcode.com/" }, ErrInvalidSiteRoot},
		{"empty json dir", func(c *Config) { c.JSONDir = "" }, ErrEmptyJSONDir},
		{"empty state file", func(c *Config) { c.StateFile = "" }, ErrEmptyStateFile},
		{"empty marker", func(c *Config) { c.LinkText = "" }, ErrEmptyLinkText},
		{"empty selector", func(c *Config) { c.LinkSelector = "" }, ErrEmptyLinkText},
		{"negative grace wait", func(c *Config) { c.GraceWait = -time.Second }, ErrInvalidWait},
		{"negative wait on empty", func(c *Config) { c.WaitOnEmpty = -time.Millisecond }, ErrInvalidWait},
		{"zero login timeout", func(c *Config) { c.LoginTimeout = 0 }, ErrInvalidLoginTimeout},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"unknown driver", func(c *Config) { c.Driver = "selenium" }, ErrUnknownDriver},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("http driver is valid", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Driver = DriverHTTP
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero grace wait is valid", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.GraceWait = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	t.Run("DEBUG=1 enables verbose", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := ApplyEnv(cfg, mapLookup(map[string]string{"DEBUG": "1"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Verbose {
			t.Error("expected Verbose to be true")
		}
	})

	t.Run("DEBUG=true enables verbose", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := ApplyEnv(cfg, mapLookup(map[string]string{"DEBUG": "true"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Verbose {
			t.Error("expected Verbose to be true")
		}
	})

	t.Run("LOG_LEVEL=debug enables verbose", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := ApplyEnv(cfg, mapLookup(map[string]string{"LOG_LEVEL": "debug"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Verbose {
			t.Error("expected Verbose to be true")
		}
	})

	t.Run("other DEBUG values keep verbose off", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		env := map[string]string{"DEBUG": "yes", "LOG_LEVEL": "info"}
		if err := ApplyEnv(cfg, mapLookup(env)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Verbose {
			t.Error("expected Verbose to be false")
		}
	})

	t.Run("WAIT_ON_EMPTY_MS sets the empty wait", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := ApplyEnv(cfg, mapLookup(map[string]string{"WAIT_ON_EMPTY_MS": "1500"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.WaitOnEmpty != 1500*time.Millisecond {
			t.Errorf("expected 1.5s, got %v", cfg.WaitOnEmpty)
		}
	})

	t.Run("empty WAIT_ON_EMPTY_MS keeps default", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := ApplyEnv(cfg, mapLookup(map[string]string{"WAIT_ON_EMPTY_MS": ""})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.WaitOnEmpty != 0 {
			t.Errorf("expected 0, got %v", cfg.WaitOnEmpty)
		}
	})

	t.Run("malformed WAIT_ON_EMPTY_MS returns ErrInvalidEnv", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		err := ApplyEnv(cfg, mapLookup(map[string]string{"WAIT_ON_EMPTY_MS": "soon"}))
		if !errors.Is(err, ErrInvalidEnv) {
			t.Errorf("expected ErrInvalidEnv, got %v", err)
		}
	})

	t.Run("malformed AOCBOARD_HEADLESS returns ErrInvalidEnv", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		err := ApplyEnv(cfg, mapLookup(map[string]string{"AOCBOARD_HEADLESS": "maybe"}))
		if !errors.Is(err, ErrInvalidEnv) {
			t.Errorf("expected ErrInvalidEnv, got %v", err)
		}
	})

	t.Run("AOCBOARD variables override fields", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		env := map[string]string{
			"AOCBOARD_YEAR":             "2023",
			"AOCBOARD_SITE_ROOT":        "http://localhost:9000",
			"AOCBOARD_JSON_DIR":         "out",
			"AOCBOARD_STATE_FILE":       "state.json",
			"AOCBOARD_DRIVER":           "http",
			"AOCBOARD_HEADLESS":         "true",
			"AOCBOARD_BROWSER_BIN":      "/usr/bin/chromium",
			"AOCBOARD_LOGIN_TIMEOUT_MS": "60000",
			"WAIT_BEFORE_SCRAPE_MS":     "0",
		}
		if err := ApplyEnv(cfg, mapLookup(env)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Year != "2023" || cfg.SiteRoot != "http://localhost:9000" {
			t.Errorf("unexpected year/site root: %q %q", cfg.Year, cfg.SiteRoot)
		}
		if cfg.JSONDir != "out" || cfg.StateFile != "state.json" {
			t.Errorf("unexpected paths: %q %q", cfg.JSONDir, cfg.StateFile)
		}
		if cfg.Driver != DriverHTTP || !cfg.Headless || cfg.BrowserBin != "/usr/bin/chromium" {
			t.Errorf("unexpected browser settings: %+v", cfg)
		}
		if cfg.LoginTimeout != time.Minute {
			t.Errorf("expected 1m login timeout, got %v", cfg.LoginTimeout)
		}
		if cfg.GraceWait != 0 {
			t.Errorf("expected zero grace wait, got %v", cfg.GraceWait)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Parallel()

	t.Run("missing file yields empty map", func(t *testing.T) {
		t.Parallel()
		values, err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 0 {
			t.Errorf("expected empty map, got %v", values)
		}
	})

	t.Run("reads key value pairs", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".env")
		content := "# comment\nWAIT_ON_EMPTY_MS=250\nAOCBOARD_YEAR=\"2022\"\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		values, err := LoadDotEnv(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if values["WAIT_ON_EMPTY_MS"] != "250" {
			t.Errorf("expected 250, got %q", values["WAIT_ON_EMPTY_MS"])
		}
		if values["AOCBOARD_YEAR"] != "2022" {
			t.Errorf("expected 2022, got %q", values["AOCBOARD_YEAR"])
		}
	})
}

func TestEnvLookup(t *testing.T) {
	t.Setenv("AOCBOARD_TEST_ONLY_KEY", "from-process")

	lookup := EnvLookup(map[string]string{
		"AOCBOARD_TEST_ONLY_KEY":  "from-dotenv",
		"AOCBOARD_TEST_ONLY_FILE": "dotenv-only",
	})

	if v, _ := lookup("AOCBOARD_TEST_ONLY_KEY"); v != "from-process" {
		t.Errorf("expected process environment to win, got %q", v)
	}
	if v, ok := lookup("AOCBOARD_TEST_ONLY_FILE"); !ok || v != "dotenv-only" {
		t.Errorf("expected dotenv fallback, got %q (%v)", v, ok)
	}
	if _, ok := lookup("AOCBOARD_TEST_ONLY_MISSING"); ok {
		t.Error("expected missing key to be unset")
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.aocboard")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("parses all fields", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".aocboard")
		content := `year: "2024"
siteRoot: http://localhost:8080
jsonDir: data
stateFile: state/cookies.json
graceWait: 0s
waitOnEmpty: 2s
loginTimeout: 5m
timeout: 45s
driver: http
headless: true
verbose: true
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		file, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		file.Apply(cfg)

		if cfg.Year != "2024" || cfg.SiteRoot != "http://localhost:8080" {
			t.Errorf("unexpected year/site root: %q %q", cfg.Year, cfg.SiteRoot)
		}
		if cfg.JSONDir != "data" || cfg.StateFile != "state/cookies.json" {
			t.Errorf("unexpected paths: %q %q", cfg.JSONDir, cfg.StateFile)
		}
		if cfg.GraceWait != 0 {
			t.Errorf("expected explicit zero grace wait, got %v", cfg.GraceWait)
		}
		if cfg.WaitOnEmpty != 2*time.Second {
			t.Errorf("expected 2s wait on empty, got %v", cfg.WaitOnEmpty)
		}
		if cfg.LoginTimeout != 5*time.Minute || cfg.Timeout != 45*time.Second {
			t.Errorf("unexpected timeouts: %v %v", cfg.LoginTimeout, cfg.Timeout)
		}
		if cfg.Driver != DriverHTTP || !cfg.Headless || !cfg.Verbose {
			t.Errorf("unexpected flags: %+v", cfg)
		}
	})

	t.Run("unset fields keep defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".aocboard")
		if err := os.WriteFile(path, []byte("year: \"2021\"\n"), 0600); err != nil {
			t.Fatal(err)
		}

		file, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		file.Apply(cfg)

		if cfg.Year != "2021" {
			t.Errorf("expected 2021, got %q", cfg.Year)
		}
		if cfg.GraceWait != DefaultGraceWait {
			t.Errorf("expected default grace wait, got %v", cfg.GraceWait)
		}
		if cfg.Headless {
			t.Error("expected default headless false")
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".aocboard")
		if err := os.WriteFile(path, []byte("year: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("environment overrides config file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".aocboard")
		if err := os.WriteFile(path, []byte("year: \"2020\"\njsonDir: from-file\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(mapLookup(map[string]string{
			"AOCBOARD_CONFIG": path,
			"AOCBOARD_YEAR":   "2019",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Year != "2019" {
			t.Errorf("expected env year 2019, got %q", cfg.Year)
		}
		if cfg.JSONDir != "from-file" {
			t.Errorf("expected file json dir, got %q", cfg.JSONDir)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("expected ConfigFilePath %q, got %q", path, cfg.ConfigFilePath)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()
		_, err := Load(mapLookup(map[string]string{
			"AOCBOARD_CONFIG": filepath.Join(t.TempDir(), "missing.yaml"),
		}))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed environment is an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".aocboard")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		_, err := Load(mapLookup(map[string]string{
			"AOCBOARD_CONFIG":  path,
			"WAIT_ON_EMPTY_MS": "-",
		}))
		if !errors.Is(err, ErrInvalidEnv) {
			t.Errorf("expected ErrInvalidEnv, got %v", err)
		}
	})
}
