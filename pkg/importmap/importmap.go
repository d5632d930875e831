// Package importmap builds the browser import map spliced into the application HTML.
package importmap

import (
	"context"
	"fmt"
	"io/fs"
	"maps"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Map is a browser import map.
type Map struct {
	Imports map[string]string            `json:"imports" yaml:"imports"`
	Scopes  map[string]map[string]string `json:"scopes,omitempty" yaml:"scopes"`
}

// Merge copies other on top of m. Entries in other win.
func (m *Map) Merge(other Map) {
	if len(other.Imports) > 0 {
		if m.Imports == nil {
			m.Imports = make(map[string]string, len(other.Imports))
		}
		maps.Copy(m.Imports, other.Imports)
	}
	for scope, imports := range other.Scopes {
		if m.Scopes == nil {
			m.Scopes = make(map[string]map[string]string)
		}
		if m.Scopes[scope] == nil {
			m.Scopes[scope] = make(map[string]string, len(imports))
		}
		maps.Copy(m.Scopes[scope], imports)
	}
}

// Generator renders an import map from an optional JSON5 source file overlaid
// with configured entries. The file is read again on every call so edits show
// up on the next page load.
type Generator struct {
	FS   fs.FS
	File string

	Overrides Map
	Indent    string
}

func (g *Generator) Load() (Map, error) {
	var out Map
	if g.File != "" {
		if g.FS == nil {
			return Map{}, fmt.Errorf("import map file %s configured without a filesystem", g.File)
		}
		data, err := fs.ReadFile(g.FS, g.File)
		if err != nil {
			return Map{}, fmt.Errorf("read import map: %w", err)
		}
		if err := json5.Unmarshal(data, &out); err != nil {
			return Map{}, fmt.Errorf("parse import map %s: %w", g.File, err)
		}
	}
	out.Merge(g.Overrides)
	if out.Imports == nil {
		out.Imports = map[string]string{}
	}
	return out, nil
}

// Generate returns the import map as JSON text.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	importMap, err := g.Load()
	if err != nil {
		return "", err
	}
	var payload []byte
	if g.Indent != "" {
		payload, err = json5.MarshalIndent(importMap, "", g.Indent)
	} else {
		payload, err = json5.Marshal(importMap)
	}
	if err != nil {
		return "", fmt.Errorf("encode import map: %w", err)
	}
	return string(payload), nil
}
