package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/aocboard/internal/browser"
	"github.com/nao1215/aocboard/internal/config"
	"github.com/nao1215/aocboard/internal/model"
	"github.com/nao1215/aocboard/internal/report"
	"github.com/nao1215/aocboard/internal/session"
)

// Download performs one complete run: it restores the saved session when
// the state file exists, launches the driver, opens the leaderboard page,
// runs the steps and closes the driver on every exit path.
//
// The returned Run is never nil, so callers can inspect how far a failed
// run got.
func Download(ctx context.Context, cfg *config.Config, driver browser.Driver, out *report.Printer, opts ...Option) (*model.Run, error) {
	p := New(opts...)
	logger := p.logger
	if out == nil {
		out = report.Discard()
	}

	run := model.NewRun(cfg.LeaderboardURL())
	logger.Debug("starting download",
		"year", cfg.Year,
		"leaderboard", run.LeaderboardURL,
		"dir", cfg.JSONDir,
		"state_file", cfg.StateFile,
		"driver", cfg.Driver,
	)

	st, err := restoreState(cfg, run, logger)
	if err != nil {
		return run, err
	}

	defer func() {
		logger.Debug("closing browser")
		if err := driver.Close(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	if err := driver.Launch(ctx); err != nil {
		return run, err
	}

	page, err := driver.NewPage(ctx, st, traceHooks(logger))
	if err != nil {
		return run, err
	}

	p.AddSteps(
		NewNavigateStep(page, cfg, out, logger),
		NewGraceWaitStep(page, cfg, out, logger),
		NewLoginStep(page, cfg, out, logger),
		NewOutputDirStep(page, cfg, out, logger),
		NewDiscoverStep(page, cfg, out, logger),
		NewDownloadStep(page, cfg, out, logger),
	)
	if err := p.Execute(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// restoreState loads the state file when it exists. A missing file means a
// fresh, empty context.
func restoreState(cfg *config.Config, run *model.Run, logger *slog.Logger) (*session.State, error) {
	if !session.Exists(cfg.StateFile) {
		logger.Debug("no saved state, starting with an empty context", "file", cfg.StateFile)
		return nil, nil
	}

	st, err := session.Load(cfg.StateFile)
	if err != nil {
		return nil, err
	}
	run.StateRestored = true

	applicable := 0
	if u, err := url.Parse(run.LeaderboardURL); err == nil {
		applicable = len(st.CookiesFor(u, time.Now()))
	}
	logger.Debug("using saved state", "file", cfg.StateFile, "entries", st.Len(), "applicable", applicable)
	if applicable == 0 {
		logger.Warn("saved state has no usable entry for the site, a login will be required", "file", cfg.StateFile)
	}
	return st, nil
}

// traceHooks turns page events into debug records. Only responses of
// leaderboard URLs are traced.
func traceHooks(logger *slog.Logger) browser.Hooks {
	return browser.Hooks{
		OnConsole: func(kind, text string) {
			logger.Debug("page console", "type", kind, "text", text)
		},
		OnResponse: func(status int, u string) {
			if strings.Contains(u, "/leaderboard/") {
				logger.Debug("http response", "status", status, "url", u)
			}
		},
	}
}
