package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".aocboard"

// xdgConfigFile is the file name looked up inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .aocboard configuration file.
// Every field is optional; unset fields keep the value already in Config.
// Durations use Go syntax ("10s", "5m").
type File struct {
	Year           string `yaml:"year,omitempty"`
	SiteRoot       string `yaml:"siteRoot,omitempty"`
	JSONDir        string `yaml:"jsonDir,omitempty"`
	StateFile      string `yaml:"stateFile,omitempty"`
	LinkText       string `yaml:"linkText,omitempty"`
	ResourceSuffix string `yaml:"resourceSuffix,omitempty"`

	// GraceWait and WaitOnEmpty are pointers because zero is meaningful.
	GraceWait    *time.Duration `yaml:"graceWait,omitempty"`
	WaitOnEmpty  *time.Duration `yaml:"waitOnEmpty,omitempty"`
	LoginTimeout time.Duration  `yaml:"loginTimeout,omitempty"`
	Timeout      time.Duration  `yaml:"timeout,omitempty"`

	Verbose    bool   `yaml:"verbose,omitempty"`
	Driver     string `yaml:"driver,omitempty"`
	Headless   *bool  `yaml:"headless,omitempty"`
	BrowserBin string `yaml:"browserBin,omitempty"`
	UserAgent  string `yaml:"userAgent,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies every set field of the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setString(&cfg.Year, cf.Year)
	setString(&cfg.SiteRoot, cf.SiteRoot)
	setString(&cfg.JSONDir, cf.JSONDir)
	setString(&cfg.StateFile, cf.StateFile)
	setString(&cfg.LinkText, cf.LinkText)
	setString(&cfg.ResourceSuffix, cf.ResourceSuffix)
	setString(&cfg.Driver, cf.Driver)
	setString(&cfg.BrowserBin, cf.BrowserBin)
	setString(&cfg.UserAgent, cf.UserAgent)

	if cf.GraceWait != nil {
		cfg.GraceWait = *cf.GraceWait
	}
	if cf.WaitOnEmpty != nil {
		cfg.WaitOnEmpty = *cf.WaitOnEmpty
	}
	if cf.LoginTimeout != 0 {
		cfg.LoginTimeout = cf.LoginTimeout
	}
	if cf.Timeout != 0 {
		cfg.Timeout = cf.Timeout
	}
	if cf.Headless != nil {
		cfg.Headless = *cf.Headless
	}
	if cf.Verbose {
		cfg.Verbose = true
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .aocboard in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .aocboard in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load builds the effective configuration: defaults, then the configuration
// file (explicit path from AOCBOARD_CONFIG or the search order of
// FindConfigFile), then the environment.
// An explicitly named file that does not exist is an error; a missing file
// found by searching is not.
func Load(lookup LookupFunc) (*Config, error) {
	cfg := NewConfig()

	explicit, _ := lookup(EnvConfigFile)
	path := FindConfigFile(explicit)
	switch {
	case path != "":
		file, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		file.Apply(cfg)
		cfg.ConfigFilePath = path
	case explicit != "":
		return nil, ErrConfigNotFound
	}

	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}
