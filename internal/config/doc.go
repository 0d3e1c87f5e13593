// Package config provides the configuration of a leaderboard download run.
// It defines the defaults, the optional .aocboard YAML file, and the
// environment variables that override both.
package config
