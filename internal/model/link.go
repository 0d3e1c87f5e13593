package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned when a link would produce a file outside the
// output directory.
var ErrUnsafePath = errors.New("link path escapes the output directory")

// Link is a leaderboard link read from the href attribute of a "[View]"
// anchor, e.g. "/2025/leaderboard/private/view/123456".
// It is kept exactly as the page wrote it: no normalization, no dedup.
type Link struct {
	Href string
}

// ResourcePath returns the site-relative path of the JSON resource behind
// the link: Href with suffix appended.
func (l Link) ResourcePath(suffix string) string {
	return l.Href + suffix
}

// OutputFile returns the local file for the link's resource.
//
// Links below the private leaderboard page of the year keep the rest of
// their path:
//
//	/2025/leaderboard/private/123456/view -> <dir>/2025/123456/view.json
//
// Any other link keeps only its last path segment:
//
//	/2025/board/123456 -> <dir>/2025/123456.json
func (l Link) OutputFile(dir, year, suffix string) (string, error) {
	resource := l.ResourcePath(suffix)

	prefix := "/" + year + "/leaderboard/private/"
	var rel string
	if strings.HasPrefix(resource, prefix) && len(resource) > len(prefix) {
		rel = resource[len(prefix):]
	} else {
		rel = resource[strings.LastIndex(resource, "/")+1:]
	}

	if rel == "" || rel == suffix {
		return "", fmt.Errorf("%w: %q has no file name", ErrUnsafePath, l.Href)
	}
	for _, segment := range strings.Split(rel, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %q", ErrUnsafePath, l.Href)
		}
	}

	return filepath.Join(dir, year, filepath.FromSlash(rel)), nil
}
