package model

// Download is the outcome of fetching one leaderboard resource and writing it.
type Download struct {
	// Link is the discovered link.
	Link Link

	// Path is the site-relative resource path (Href plus suffix).
	Path string

	// URL is the absolute URL that was fetched.
	URL string

	// File is the local file the body was written to.
	File string

	// Bytes is the size of the fetched text body.
	Bytes int

	// Err is the write failure, if any. Fetch failures abort the run and
	// therefore never show up here.
	Err error
}

// OK reports whether the body was written.
func (d Download) OK() bool {
	return d.Err == nil
}

// Run collects what happened during one run of the procedure.
// It is built up step by step and returned to the caller; it is not persisted.
type Run struct {
	// LeaderboardURL is the target page.
	LeaderboardURL string

	// StateRestored is true when the browser context was created from a saved state file.
	StateRestored bool

	// LandedURL is the page URL after the first navigation and the grace wait.
	LandedURL string

	// LoginRequired is true when the page was not the target and the run
	// waited for a manual login.
	LoginRequired bool

	// StateSaved is true when the session state file was written.
	StateSaved bool

	// DirCreated is true when the output directory did not exist before the run.
	DirCreated bool

	// Links are the discovered leaderboard links, in document order.
	Links []Link

	// Downloads has one entry per link that was fetched.
	Downloads []Download

	// Steps are the names of the steps that completed, in order.
	Steps []string
}

// NewRun creates an empty Run for the given target page.
func NewRun(leaderboardURL string) *Run {
	return &Run{
		LeaderboardURL: leaderboardURL,
		Links:          make([]Link, 0),
		Downloads:      make([]Download, 0),
		Steps:          make([]string, 0),
	}
}

// Written returns the number of files written.
func (r *Run) Written() int {
	n := 0
	for _, d := range r.Downloads {
		if d.OK() {
			n++
		}
	}
	return n
}

// Failures returns the downloads whose write failed.
func (r *Run) Failures() []Download {
	failed := make([]Download, 0)
	for _, d := range r.Downloads {
		if !d.OK() {
			failed = append(failed, d)
		}
	}
	return failed
}
