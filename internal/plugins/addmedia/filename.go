package addmedia

import (
	"net/url"
	"path"
	"strings"
)

// FilenameFromURL returns the last path segment of raw as it appears in the
// URL, ignoring any query string or fragment. Percent escapes are kept, so an
// encoded slash never splits the segment.
func FilenameFromURL(raw string) string {
	p := raw
	if parsed, err := url.Parse(raw); err == nil {
		p = parsed.EscapedPath()
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		p = raw[:i]
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	return path.Base(p)
}
