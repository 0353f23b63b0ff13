package helpers

import (
	"strings"
)

// Origin returns the scheme and host of a URL ("https://host"), or the input
// unchanged when it has no scheme separator.
func Origin(rawURL string) string {
	parts := strings.SplitN(rawURL, "/", 4)
	if len(parts) < 3 {
		return rawURL
	}
	return strings.Join(parts[:3], "/")
}

// Host returns the host part of a URL, falling back to the whole string
func Host(rawURL string) string {
	parts := strings.SplitN(rawURL, "/", 4)
	if len(parts) < 3 || parts[2] == "" {
		return rawURL
	}
	return parts[2]
}

// ResolveURL makes ref absolute relative to the origin of pageURL.
//
//	//host/x  -> https://host/x
//	/x        -> <origin>/x
//	x         -> <origin>/x
//	http(s)   -> unchanged
func ResolveURL(pageURL, ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		return Origin(pageURL) + ref
	case strings.HasPrefix(ref, "http"):
		return ref
	default:
		return Origin(pageURL) + "/" + ref
	}
}
