// Package modulecompile compiles JSX module sources on request and picks the
// emitted file that corresponds to the requested URL path.
package modulecompile

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/beeper/drawboard/pkg/logutil"
)

// LogComponent tags compiler log lines.
const LogComponent = "compiler"

var ErrNoMatchingOutput = errors.New("no emitted output matches")

// Diagnostic is a non-fatal message reported by an emitter.
type Diagnostic struct {
	Text   string
	File   string
	Line   int
	Column int
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return d.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Text)
}

// Result is everything one emitter run produced. Files are keyed by file URL.
type Result struct {
	Files       map[string][]byte
	Diagnostics []Diagnostic
}

// Emitter compiles the module at an absolute source path.
type Emitter interface {
	Emit(ctx context.Context, sourcePath string) (*Result, error)
}

type Compiler struct {
	emitter Emitter
	workDir string
	baseURL string
	log     zerolog.Logger
}

// New creates a compiler resolving request paths against workDir.
func New(emitter Emitter, workDir string, log zerolog.Logger) (*Compiler, error) {
	if emitter == nil {
		return nil, fmt.Errorf("emitter is required")
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	return &Compiler{
		emitter: emitter,
		workDir: abs,
		baseURL: FileURL(abs),
		log:     log,
	}, nil
}

// SourcePath maps a request path like /js/main.jsx.js to the module source
// on disk (workDir/js/main.jsx).
func (c *Compiler) SourcePath(requestPath string) (string, error) {
	rel := strings.TrimPrefix(strings.TrimSuffix(requestPath, ".js"), "/")
	if rel == "" {
		return "", fmt.Errorf("empty module path")
	}
	full := filepath.Join(c.workDir, filepath.FromSlash(rel))
	within, err := filepath.Rel(c.workDir, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("module path %s escapes the working directory", requestPath)
	}
	return full, nil
}

// Compile runs the emitter for the module behind requestPath and returns the
// output whose short name equals requestPath.
func (c *Compiler) Compile(ctx context.Context, requestPath string) ([]byte, error) {
	log := logutil.FromContext(ctx, &c.log, LogComponent)
	source, err := c.SourcePath(requestPath)
	if err != nil {
		return nil, err
	}
	result, err := c.emitter.Emit(ctx, source)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w %s", ErrNoMatchingOutput, requestPath)
	}
	for _, diag := range result.Diagnostics {
		log.Warn().
			Str("module", requestPath).
			Str("diagnostic", diag.String()).
			Msg("Compiler reported a diagnostic")
	}
	for _, name := range slices.Sorted(maps.Keys(result.Files)) {
		if shortName(c.baseURL, name) == requestPath {
			return result.Files[name], nil
		}
	}
	log.Debug().
		Str("module", requestPath).
		Strs("outputs", slices.Sorted(maps.Keys(result.Files))).
		Msg("No emitted output matched")
	return nil, fmt.Errorf("%w %s", ErrNoMatchingOutput, requestPath)
}
