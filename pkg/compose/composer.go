package compose

import (
	"bytes"
	"context"
	"fmt"
)

// DefaultMarker is the placeholder in index.html that the import map replaces.
const DefaultMarker = "//__importmap"

// Generator produces the import map text spliced into HTML documents.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context) (string, error) {
	return f(ctx)
}

// Composer splices a freshly generated import map into HTML at the marker.
type Composer struct {
	Generator Generator
	Marker    string
}

func New(generator Generator) *Composer {
	return &Composer{Generator: generator, Marker: DefaultMarker}
}

// Compose returns html with the first marker occurrence replaced by the
// generated import map. Documents are expected to carry the marker exactly
// once; without it the import map is appended at the end.
func (c *Composer) Compose(ctx context.Context, html []byte) ([]byte, error) {
	if c.Generator == nil {
		return nil, fmt.Errorf("no import map generator configured")
	}
	importMap, err := c.Generator.Generate(ctx)
	if err != nil {
		return nil, err
	}
	marker := c.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	before, after, _ := bytes.Cut(html, []byte(marker))
	out := make([]byte, 0, len(before)+len(importMap)+len(after))
	out = append(out, before...)
	out = append(out, importMap...)
	out = append(out, after...)
	return out, nil
}
