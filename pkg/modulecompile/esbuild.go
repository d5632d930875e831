package modulecompile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// EsbuildEmitter compiles a single module in process with esbuild. Imports are
// left untouched for the browser to resolve through the import map.
type EsbuildEmitter struct {
	JSX         api.JSX
	JSXFactory  string
	JSXFragment string
	Target      api.Target
	Sourcemap   api.SourceMap
	Minify      bool
}

func (e *EsbuildEmitter) Emit(ctx context.Context, sourcePath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	build := api.Build(api.BuildOptions{
		EntryPoints:       []string{sourcePath},
		Outfile:           sourcePath + ".js",
		Write:             false,
		Bundle:            false,
		Format:            api.FormatESModule,
		Platform:          api.PlatformBrowser,
		Target:            e.Target,
		JSX:               e.JSX,
		JSXFactory:        e.JSXFactory,
		JSXFragment:       e.JSXFragment,
		Sourcemap:         e.Sourcemap,
		MinifyWhitespace:  e.Minify,
		MinifyIdentifiers: e.Minify,
		MinifySyntax:      e.Minify,
		LogLevel:          api.LogLevelSilent,
	})
	if len(build.Errors) > 0 {
		return nil, messagesError(build.Errors)
	}
	result := &Result{Files: make(map[string][]byte, len(build.OutputFiles))}
	for _, file := range build.OutputFiles {
		result.Files[FileURL(file.Path)] = file.Contents
	}
	for _, msg := range build.Warnings {
		result.Diagnostics = append(result.Diagnostics, diagnosticFromMessage(msg))
	}
	return result, nil
}

func diagnosticFromMessage(msg api.Message) Diagnostic {
	diag := Diagnostic{Text: msg.Text}
	if msg.Location != nil {
		diag.File = msg.Location.File
		diag.Line = msg.Location.Line
		diag.Column = msg.Location.Column
	}
	return diag
}

func messagesError(msgs []api.Message) error {
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, diagnosticFromMessage(msg).String())
	}
	return errors.New(strings.Join(lines, "\n"))
}

// ParseJSX maps a config value to an esbuild JSX mode.
func ParseJSX(value string) (api.JSX, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "transform", "classic":
		return api.JSXTransform, nil
	case "automatic":
		return api.JSXAutomatic, nil
	case "preserve":
		return api.JSXPreserve, nil
	default:
		return api.JSXTransform, fmt.Errorf("unknown jsx mode %q", value)
	}
}

var targets = map[string]api.Target{
	"":       api.ESNext,
	"esnext": api.ESNext,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
}

func ParseTarget(value string) (api.Target, error) {
	target, ok := targets[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return api.ESNext, fmt.Errorf("unknown target %q", value)
	}
	return target, nil
}

func ParseSourcemap(value string) (api.SourceMap, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return api.SourceMapNone, nil
	case "inline":
		return api.SourceMapInline, nil
	case "linked":
		return api.SourceMapLinked, nil
	case "external":
		return api.SourceMapExternal, nil
	default:
		return api.SourceMapNone, fmt.Errorf("unknown sourcemap mode %q", value)
	}
}
