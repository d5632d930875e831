// Package documents serves saved drawings as raw JSON.
package documents

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
)

// jsonSuffixLen is the length of the ".json" suffix stripped from request paths.
const jsonSuffixLen = len(".json")

// Loader reads saved drawings from a filesystem rooted at the document directory.
type Loader struct {
	fsys fs.FS
}

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// FilePath maps /name.excalidraw.json to name.excalidraw.
func FilePath(requestPath string) (string, error) {
	if len(requestPath) < jsonSuffixLen {
		return "", fmt.Errorf("invalid document path %q", requestPath)
	}
	name := strings.TrimPrefix(requestPath[:len(requestPath)-jsonSuffixLen], "/")
	if !fs.ValidPath(name) || name == "." {
		return "", fmt.Errorf("invalid document path %q", requestPath)
	}
	return name, nil
}

// Load returns the stored document bytes unchanged.
func (l *Loader) Load(ctx context.Context, requestPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := FilePath(requestPath)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(l.fsys, name)
}
