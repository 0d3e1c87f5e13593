package report

import (
	"fmt"
	"io"
	"time"

	"github.com/nao1215/aocboard/internal/model"
)

// LoginPrompt is printed when the leaderboard page needs a manual login.
const LoginPrompt = "!!! PLEASE LOGIN AND GO TO PRIVATE LEADERBOARDS !!!"

// Printer writes progress lines to out and failures to errOut.
// Write errors on the terminal are ignored: there is nowhere left to report them.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// NewPrinter creates a Printer. Nil writers discard their output.
func NewPrinter(out, errOut io.Writer) *Printer {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Printer{out: out, errOut: errOut}
}

// Discard returns a Printer that prints nothing.
func Discard() *Printer {
	return NewPrinter(nil, nil)
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// GraceWait announces the pause before the page is scanned.
func (p *Printer) GraceWait(d time.Duration) {
	p.printf("[info] Waiting %dms before scanning the page (set WAIT_BEFORE_SCRAPE_MS env to adjust).", d.Milliseconds())
}

// LoginRequired asks the user to log in in the browser window.
func (p *Printer) LoginRequired() {
	p.printf("%s", LoginPrompt)
}

// SavedState reports the session state file written after a login.
func (p *Printer) SavedState(file string) {
	p.printf("Saved authentication state to '%s'", file)
}

// NoLinks announces the pause when the page has no leaderboard link.
func (p *Printer) NoLinks(linkText string, wait time.Duration) {
	p.printf("[info] Found 0 %q links. Waiting %dms so you can inspect the page... (set WAIT_ON_EMPTY_MS env to adjust)", linkText, wait.Milliseconds())
}

// Saving reports the resource about to be fetched and its destination.
func (p *Printer) Saving(path, file string) {
	p.printf("Saving leaderboard %s -> %s", path, file)
}

// WriteFailed reports a file that could not be written.
func (p *Printer) WriteFailed(file string, err error) {
	_, _ = fmt.Fprintf(p.errOut, "Failed to write file %s %v\n", file, err)
}

// Summary prints how many leaderboards were written.
func (p *Printer) Summary(run *model.Run) {
	if run == nil {
		return
	}
	failed := len(run.Failures())
	if failed == 0 {
		p.printf("Saved %d of %d leaderboards", run.Written(), len(run.Links))
		return
	}
	p.printf("Saved %d of %d leaderboards (%d failed)", run.Written(), len(run.Links), failed)
}
