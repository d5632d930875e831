package assets

import (
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"strings"
	"time"
)

// DefaultTable lists the well-known application paths and the files backing them.
var DefaultTable = map[string]string{
	"/":              "index.html",
	"/index.html":    "index.html",
	"/css/style.css": "css/style.css",
	"/js/main.js":    "js/main.js",
}

// Descriptor identifies a static asset on disk and its declared media type.
type Descriptor struct {
	FilePath  string
	MediaType string
}

// File is the content of a static asset read from the asset filesystem.
type File struct {
	Descriptor
	Content []byte
	ModTime time.Time
}

// Resolver maps request paths to static assets with exact-match lookups.
type Resolver struct {
	fsys  fs.FS
	table map[string]Descriptor
}

// New builds a resolver over fsys. Every table entry must have a known media type.
func New(fsys fs.FS, table map[string]string) (*Resolver, error) {
	if fsys == nil {
		return nil, fmt.Errorf("asset filesystem is required")
	}
	if len(table) == 0 {
		table = DefaultTable
	}
	resolved := make(map[string]Descriptor, len(table))
	for requestPath, filePath := range table {
		filePath = strings.TrimPrefix(strings.TrimPrefix(filePath, "./"), "/")
		if !fs.ValidPath(filePath) {
			return nil, fmt.Errorf("invalid asset file path %q for %s", filePath, requestPath)
		}
		mediaType, ok := MediaTypeFor(filePath)
		if !ok {
			return nil, fmt.Errorf("no media type for asset %s (%s)", requestPath, filePath)
		}
		resolved[requestPath] = Descriptor{FilePath: filePath, MediaType: mediaType}
	}
	return &Resolver{fsys: fsys, table: resolved}, nil
}

// Resolve returns the descriptor for an exact request path match.
func (r *Resolver) Resolve(requestPath string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	desc, ok := r.table[requestPath]
	return desc, ok
}

// Read loads the asset content.
func (r *Resolver) Read(desc Descriptor) (*File, error) {
	content, err := fs.ReadFile(r.fsys, desc.FilePath)
	if err != nil {
		return nil, err
	}
	file := &File{Descriptor: desc, Content: content}
	if info, err := fs.Stat(r.fsys, desc.FilePath); err == nil {
		file.ModTime = info.ModTime()
	}
	return file, nil
}

// Documents returns the distinct HTML assets in the table, sorted by file path.
func (r *Resolver) Documents() []Descriptor {
	if r == nil {
		return nil
	}
	seen := make(map[string]Descriptor)
	for _, desc := range r.table {
		if desc.MediaType == MediaTypeHTML {
			seen[desc.FilePath] = desc
		}
	}
	names := slices.Sorted(maps.Keys(seen))
	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, seen[name])
	}
	return out
}
