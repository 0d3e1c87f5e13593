// Package session persists the authentication state of the browser between
// runs.
//
// The state file uses the same JSON layout as a Playwright storage state
// ({"cookies": [...], "origins": [...]}), so a cookies.json produced by the
// previous Node.js tooling is picked up unchanged. The file is opaque to the
// rest of the program: it is loaded at startup when present, handed to the
// browser driver, and replaced after a manual login.
package session
