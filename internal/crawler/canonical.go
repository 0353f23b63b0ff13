package crawler

import (
	"regexp"
	"strings"
)

// threadIDPattern matches a vBulletin thread id (t=) anywhere in the
// showthread.php query string. Post ids (p=) are not thread ids.
var threadIDPattern = regexp.MustCompile(`showthread\.php\?(?:[^#]*?&)?t=(\d+)`)

// Canonicalize normalizes a thread URL so that links to the same thread
// (other pages, post anchors, highlight params) collapse to one string.
// It is idempotent.
func (s Site) Canonicalize(rawURL string) string {
	if m := threadIDPattern.FindStringSubmatch(rawURL); m != nil {
		base := s.BaseURL
		if i := strings.Index(rawURL, s.ForumPath+"/"); i > 0 {
			base = rawURL[:i]
		}
		return base + s.ForumPath + "/showthread.php?t=" + m[1]
	}

	return stripLinkNoise(rawURL)
}

// CanonicalLink normalizes a link from a forum whose directory layout is not
// known. A thread link keeps its own path up to showthread.php.
func CanonicalLink(rawURL string) string {
	if m := threadIDPattern.FindStringSubmatchIndex(rawURL); m != nil {
		return rawURL[:m[0]] + "showthread.php?t=" + rawURL[m[2]:m[3]]
	}
	return stripLinkNoise(rawURL)
}

// stripLinkNoise drops the fragment and a trailing highlight parameter
func stripLinkNoise(rawURL string) string {
	rawURL, _, _ = strings.Cut(rawURL, "#")
	rawURL, _, _ = strings.Cut(rawURL, "&highlight=")
	return rawURL
}

// Canonicalize normalizes a thread URL against the M3Post site
func Canonicalize(rawURL string) string {
	return M3Post.Canonicalize(rawURL)
}
