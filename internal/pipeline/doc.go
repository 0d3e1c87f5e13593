// Package pipeline runs the leaderboard download as a sequence of steps.
//
// A run is strictly sequential: navigate to the private leaderboard page,
// pause, log in if the page asks for it, make sure the output directory
// exists, discover the leaderboard links, and download each one. Each stage
// is a Step that records what it did in a model.Run. The first failing step
// ends the run; Download closes the browser on every exit path.
package pipeline
