// Package report prints the human-readable progress of a download run.
//
// These lines are part of the tool's interface: the login prompt tells the
// user to act, and "Saving leaderboard ..." shows which file each link goes to.
// They are written to plain io.Writers rather than through the logger so they
// appear regardless of the log level. Diagnostics belong to the logger.
package report
