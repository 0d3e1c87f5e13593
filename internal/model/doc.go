// Package model defines the values that flow through a download run.
//
// This package contains the following types:
//   - Link: a leaderboard link discovered on the private leaderboard page
//   - Download: the outcome of fetching and writing one leaderboard
//   - Run: the observable facts of a single run
//
// None of these are persisted. The only durable artefacts of a run are the
// session state file and the JSON files, which are copied verbatim.
package model
