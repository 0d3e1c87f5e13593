// Package log provides slog-based logging that keeps session material out of
// the output.
//
// The program carries an Advent of Code session cookie around: it is read
// from the state file, injected into the browser, and written back after a
// manual login. Debug output (page console messages, HTTP response lines)
// may echo it. The SecureHandler masks:
//   - attributes whose key names a credential (cookie, session, token, ...)
//   - string values that look like a session token (long hex strings)
//   - "session=<token>" fragments inside longer strings, which are rewritten
//     in place so the rest of the message stays readable
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
//	logger.Debug("restored session", "cookie", c.Value) // cookie=***REDACTED***
//	slog.SetDefault(logger)
package log
