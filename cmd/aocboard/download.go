package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/aocboard/internal/browser"
	"github.com/nao1215/aocboard/internal/config"
	"github.com/nao1215/aocboard/internal/log"
	"github.com/nao1215/aocboard/internal/pipeline"
	"github.com/nao1215/aocboard/internal/report"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download every private leaderboard (default command)",
		Long: `Download opens the private leaderboard page, waits for a manual login when
the saved session is missing or expired, and writes the JSON data of every
"[View]" leaderboard to json/<year>/.

The command is configured through the environment (a .env file in the current
directory is read too; the process environment wins) and an optional .aocboard
configuration file (see "aocboard init"):

  DEBUG=1 or LOG_LEVEL=debug   verbose logging, including page console and HTTP responses
  WAIT_BEFORE_SCRAPE_MS        pause after opening the page (default 10000)
  WAIT_ON_EMPTY_MS             pause when no link is found (default 0)
  AOCBOARD_YEAR                event year (default 2025)
  AOCBOARD_SITE_ROOT           site root (default https://adventofcode.com)
  AOCBOARD_JSON_DIR            output directory (default json)
  AOCBOARD_STATE_FILE          saved session (default cookies.json)
  AOCBOARD_LOGIN_TIMEOUT_MS    manual login timeout (default 600000)
  AOCBOARD_DRIVER              rod (default) or http
  AOCBOARD_HEADLESS            hide the browser window (default false)
  AOCBOARD_BROWSER_BIN         Chromium binary
  AOCBOARD_CONFIG              explicit configuration file`,
		Args: cobra.NoArgs,
		RunE: runDownloadCmd,
	}
}

// runDownloadCmd executes the download command.
func runDownloadCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, config.DefaultDotEnvFile)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	driver, err := newDriver(cfg, logger)
	if err != nil {
		return err
	}

	out := report.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	run, err := pipeline.Download(ctx, cfg, driver, out, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}
	out.Summary(run)
	return nil
}

// buildConfig loads the dotenv file, the configuration file and the
// environment, then applies the --verbose flag.
func buildConfig(cmd *cobra.Command, dotEnvPath string) (*config.Config, error) {
	dotenv, err := config.LoadDotEnv(dotEnvPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.EnvLookup(dotenv))
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newDriver creates the browser driver selected by the configuration.
func newDriver(cfg *config.Config, logger *slog.Logger) (browser.Driver, error) {
	return browser.New(cfg.Driver,
		browser.WithHeadless(cfg.Headless),
		browser.WithBrowserBin(cfg.BrowserBin),
		browser.WithTimeout(cfg.Timeout),
		browser.WithUserAgent(cfg.UserAgent),
		browser.WithLogger(logger),
	)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting logger: debug when verbose, warnings otherwise.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose)
}
