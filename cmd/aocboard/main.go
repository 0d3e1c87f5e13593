// Package main provides the entry point for the aocboard CLI.
//
// aocboard downloads the JSON data of every Advent of Code private
// leaderboard you are a member of. The first run opens a browser window
// for you to log in; the session is saved and reused on later runs.
//
// Usage:
//
//	aocboard
//	aocboard download
//	WAIT_ON_EMPTY_MS=30000 aocboard
//
// See --help for all available options.
package main

// main is the entry point for aocboard.
func main() {
	Execute()
}
