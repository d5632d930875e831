package route

import "strings"

// NormalizePath turns a request path into a cache key by removing one leading
// and one trailing slash. Interior slashes are left alone.
func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	return strings.TrimSuffix(p, "/")
}
