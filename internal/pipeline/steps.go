package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/aocboard/internal/browser"
	"github.com/nao1215/aocboard/internal/config"
	"github.com/nao1215/aocboard/internal/model"
	"github.com/nao1215/aocboard/internal/report"
	"github.com/nao1215/aocboard/internal/session"
)

// Step names, in execution order.
const (
	StepNavigate  = "navigate"
	StepGraceWait = "grace-wait"
	StepLogin     = "login"
	StepOutputDir = "output-dir"
	StepDiscover  = "discover"
	StepDownload  = "download"
)

// stepBase holds what every step needs.
type stepBase struct {
	page   browser.Page
	cfg    *config.Config
	out    *report.Printer
	logger *slog.Logger
}

func newStepBase(page browser.Page, cfg *config.Config, out *report.Printer, logger *slog.Logger) stepBase {
	if out == nil {
		out = report.Discard()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return stepBase{page: page, cfg: cfg, out: out, logger: logger}
}

// NavigateStep opens the private leaderboard page.
type NavigateStep struct {
	stepBase
}

// NewNavigateStep creates a NavigateStep.
func NewNavigateStep(page browser.Page, cfg *config.Config, out *report.Printer, logger *slog.Logger) *NavigateStep {
	return &NavigateStep{stepBase: newStepBase(page, cfg, out, logger)}
}

// Name returns the step name.
func (s *NavigateStep) Name() string {
	return StepNavigate
}

// Do navigates to the leaderboard page.
func (s *NavigateStep) Do(ctx context.Context, run *model.Run) error {
	s.logger.Debug("navigating to leaderboards page", "url", run.LeaderboardURL)
	if err := s.page.Navigate(ctx, run.LeaderboardURL); err != nil {
		return err
	}
	if u, err := s.page.URL(ctx); err == nil {
		s.logger.Debug("arrived at URL", "url", u)
	}
	return nil
}

// GraceWaitStep pauses before the page is inspected.
type GraceWaitStep struct {
	stepBase
}

// NewGraceWaitStep creates a GraceWaitStep.
func NewGraceWaitStep(page browser.Page, cfg *config.Config, out *report.Printer, logger *slog.Logger) *GraceWaitStep {
	return &GraceWaitStep{stepBase: newStepBase(page, cfg, out, logger)}
}

// Name returns the step name.
func (s *GraceWaitStep) Name() string {
	return StepGraceWait
}

// Do waits for the configured grace period. A zero period skips the wait.
func (s *GraceWaitStep) Do(ctx context.Context, _ *model.Run) error {
	if s.cfg.GraceWait <= 0 {
		return nil
	}
	s.out.GraceWait(s.cfg.GraceWait)
	return s.page.Wait(ctx, s.cfg.GraceWait)
}

// LoginStep waits for a manual login when the page is not the leaderboard
// page, then saves the session state once.
type LoginStep struct {
	stepBase
}

// NewLoginStep creates a LoginStep.
func NewLoginStep(page browser.Page, cfg *config.Config, out *report.Printer, logger *slog.Logger) *LoginStep {
	return &LoginStep{stepBase: newStepBase(page, cfg, out, logger)}
}

// Name returns the step name.
func (s *LoginStep) Name() string {
	return StepLogin
}

// Do compares the current URL with the target. On a match nothing happens and
// the state file is left alone. Otherwise it prompts, blocks until the page
// reaches the target or the login timeout elapses, and writes the state file.
func (s *LoginStep) Do(ctx context.Context, run *model.Run) error {
	current, err := s.page.URL(ctx)
	if err != nil {
		return err
	}
	run.LandedURL = current
	if current == run.LeaderboardURL {
		s.logger.Debug("already on leaderboards page, login skipped")
		return nil
	}

	run.LoginRequired = true
	s.out.LoginRequired()
	s.logger.Debug("waiting for login redirect back to leaderboards page",
		"url", run.LeaderboardURL,
		"current", current,
		"timeout", s.cfg.LoginTimeout,
	)

	if err := s.page.WaitForURL(ctx, run.LeaderboardURL, s.cfg.LoginTimeout); err != nil {
		return fmt.Errorf("login did not complete: %w", err)
	}

	st, err := s.page.State(ctx)
	if err != nil {
		return err
	}
	if err := session.Save(s.cfg.StateFile, st); err != nil {
		return err
	}
	run.StateSaved = true
	s.out.SavedState(s.cfg.StateFile)
	s.logger.Debug("saved session state", "entries", st.Len(), "file", s.cfg.StateFile)
	return nil
}

// OutputDirStep creates the output directory when it is missing.
type OutputDirStep struct {
	stepBase
}

// NewOutputDirStep creates an OutputDirStep.
func NewOutputDirStep(page browser.Page, cfg *config.Config, out *report.Printer, logger *slog.Logger) *OutputDirStep {
	return &OutputDirStep{stepBase: newStepBase(page, cfg, out, logger)}
}

// Name returns the step name.
func (s *OutputDirStep) Name() string {
	return StepOutputDir
}

// Do creates the directory if absent. An existing directory is left as is.
func (s *OutputDirStep) Do(_ context.Context, run *model.Run) error {
	dir := s.cfg.JSONDir
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		s.logger.Debug("json directory already exists", "dir", dir)
		return nil
	case err == nil:
		return fmt.Errorf("output path %s exists and is not a directory", dir)
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to check output directory: %w", err)
	}

	s.logger.Debug("creating json directory", "dir", dir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	run.DirCreated = true
	return nil
}

// DiscoverStep collects the leaderboard links of the page.
type DiscoverStep struct {
	stepBase
}

// NewDiscoverStep creates a DiscoverStep.
func NewDiscoverStep(page browser.Page, cfg *config.Config, out *report.Printer, logger *slog.Logger) *DiscoverStep {
	return &DiscoverStep{stepBase: newStepBase(page, cfg, out, logger)}
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return StepDiscover
}

// Do finds the anchors whose text is the link marker and reads their href.
// Anchors without href are skipped. When nothing is found it pauses for the
// wait-on-empty duration; the page is not scanned again.
func (s *DiscoverStep) Do(ctx context.Context, run *model.Run) error {
	els, err := s.page.FindByText(ctx, s.cfg.LinkSelector, s.cfg.LinkText)
	if err != nil {
		return err
	}
	s.logger.Debug("found links", "text", s.cfg.LinkText, "count", len(els))

	if len(els) == 0 && s.cfg.WaitOnEmpty > 0 {
		s.out.NoLinks(s.cfg.LinkText, s.cfg.WaitOnEmpty)
		if err := s.page.Wait(ctx, s.cfg.WaitOnEmpty); err != nil {
			return err
		}
	}

	for _, el := range els {
		href, ok, err := el.Attribute(ctx, "href")
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Debug("skipping link without href")
			continue
		}
		s.logger.Debug("found leaderboard link", "href", href)
		run.Links = append(run.Links, model.Link{Href: href})
	}
	return nil
}

// DownloadStep fetches every discovered link and writes its text body.
type DownloadStep struct {
	stepBase
}

// NewDownloadStep creates a DownloadStep.
func NewDownloadStep(page browser.Page, cfg *config.Config, out *report.Printer, logger *slog.Logger) *DownloadStep {
	return &DownloadStep{stepBase: newStepBase(page, cfg, out, logger)}
}

// Name returns the step name.
func (s *DownloadStep) Name() string {
	return StepDownload
}

// Do handles the links in document order. Navigation and text-read failures
// end the run; a file that cannot be named or written is reported and the
// loop moves on to the next link.
func (s *DownloadStep) Do(ctx context.Context, run *model.Run) error {
	for _, link := range run.Links {
		d := model.Download{
			Link: link,
			Path: link.ResourcePath(s.cfg.ResourceSuffix),
		}
		d.URL = s.cfg.ResourceURL(d.Path)

		file, err := link.OutputFile(s.cfg.JSONDir, s.cfg.Year, s.cfg.ResourceSuffix)
		if err != nil {
			d.Err = err
			run.Downloads = append(run.Downloads, d)
			s.fail(d)
			continue
		}
		d.File = file

		s.out.Saving(d.Path, d.File)
		s.logger.Debug("fetching", "url", d.URL)
		if err := s.page.Navigate(ctx, d.URL); err != nil {
			return err
		}
		body, err := s.page.TextBody(ctx)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", d.URL, err)
		}
		d.Bytes = len(body)
		s.logger.Debug("fetched content", "length", d.Bytes)

		if err := writeFile(d.File, body); err != nil {
			d.Err = err
			run.Downloads = append(run.Downloads, d)
			s.fail(d)
			continue
		}
		run.Downloads = append(run.Downloads, d)
		s.logger.Debug("wrote file", "file", d.File)
	}
	return nil
}

func (s *DownloadStep) fail(d model.Download) {
	name := d.File
	if name == "" {
		name = d.Path
	}
	s.out.WriteFailed(name, d.Err)
	s.logger.Debug("write failed", "file", name, "href", d.Link.Href, "error", d.Err)
}

// writeFile writes body unmodified, creating the parent directories.
func writeFile(file, body string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return err
	}
	return os.WriteFile(file, []byte(body), 0644) //nolint:gosec // Leaderboard data is meant to be shared
}
