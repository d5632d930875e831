package modulecompile

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FileURL returns the file:// URL for an absolute path.
func FileURL(path string) string {
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String()
}

// commonPrefix returns the longest shared run of whole "/"-separated segments
// of a and b, always ending in "/".
func commonPrefix(a, b string) string {
	aParts := strings.Split(a, "/")
	bParts := strings.Split(b, "/")
	end := min(len(aParts), len(bParts))
	for i := 0; i < end; i++ {
		if aParts[i] != bParts[i] {
			end = i
			break
		}
	}
	if end == 0 {
		return ""
	}
	prefix := strings.Join(aParts[:end], "/")
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// shortName turns an emitted file URL into a request-style path relative to
// the working directory URL, decoding any percent escapes.
func shortName(baseURL, name string) string {
	prefix := commonPrefix(baseURL, name)
	if prefix == "" {
		return name
	}
	short := strings.Replace(name, prefix, "/", 1)
	if decoded, err := url.PathUnescape(short); err == nil {
		return decoded
	}
	return short
}
