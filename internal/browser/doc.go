// Package browser abstracts the web browser the downloader drives.
//
// The download procedure only needs a small capability set: navigate to a
// URL, wait, find elements by their visible text, read an attribute, read
// the plain-text body of a page, and export or restore the session state.
// Driver and Page describe exactly that set.
//
// Two implementations are provided:
//   - Rod: a real Chromium instance driven through the DevTools protocol
//     (github.com/go-rod/rod). It supports the interactive login.
//   - HTTP: a plain HTTP client (github.com/go-resty/resty/v2) that replays
//     the saved cookies and parses pages with github.com/PuerkitoBio/goquery.
//     It needs an existing session and fails instead of waiting for a login.
package browser
