package assets

import (
	"path"
	"strings"
)

const (
	MediaTypeHTML       = "text/html"
	MediaTypeCSS        = "text/css"
	MediaTypeJavaScript = "application/javascript"
	MediaTypeJSON       = "application/json"
	MediaTypeOctet      = "application/octet-stream"
)

// MediaTypes maps lowercase file extensions (with leading dot) to the media type
// sent in the content-type header.
var MediaTypes = map[string]string{
	".html":       MediaTypeHTML,
	".htm":        MediaTypeHTML,
	".css":        MediaTypeCSS,
	".js":         MediaTypeJavaScript,
	".mjs":        MediaTypeJavaScript,
	".jsx":        "text/jsx",
	".ts":         "text/typescript",
	".tsx":        "text/tsx",
	".json":       MediaTypeJSON,
	".map":        MediaTypeJSON,
	".excalidraw": MediaTypeJSON,
	".md":         "text/markdown",
	".txt":        "text/plain",
	".svg":        "image/svg+xml",
	".png":        "image/png",
	".ico":        "image/x-icon",
	".wasm":       "application/wasm",
	".woff2":      "font/woff2",
	".gz":         "application/gzip",
}

// MediaTypeFor returns the media type for the extension of name.
func MediaTypeFor(name string) (string, bool) {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return "", false
	}
	mediaType, ok := MediaTypes[ext]
	return mediaType, ok
}

// MediaTypeOrDefault is MediaTypeFor with a generic binary fallback.
func MediaTypeOrDefault(name string) string {
	if mediaType, ok := MediaTypeFor(name); ok {
		return mediaType
	}
	return MediaTypeOctet
}
