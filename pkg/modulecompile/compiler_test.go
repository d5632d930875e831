package modulecompile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeEmitter struct {
	sources []string
	result  *Result
	err     error
}

func (f *fakeEmitter) Emit(_ context.Context, sourcePath string) (*Result, error) {
	f.sources = append(f.sources, sourcePath)
	return f.result, f.err
}

func TestCompilePicksMatchingOutput(t *testing.T) {
	workDir := filepath.Join(t.TempDir(), "app")
	base := FileURL(workDir)
	emitter := &fakeEmitter{result: &Result{
		Files: map[string][]byte{
			base + "/js/main.jsx.js":      []byte("main"),
			base + "/js/main.jsx.js.map":  []byte("map"),
			base + "/js/components/x.js":  []byte("dep"),
			"https://esm.sh/react@17.0.2": []byte("remote"),
		},
		Diagnostics: []Diagnostic{{Text: "unused import", File: "js/main.jsx", Line: 1, Column: 8}},
	}}
	compiler, err := New(emitter, workDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := compiler.Compile(context.Background(), "/js/main.jsx.js")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if string(out) != "main" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(emitter.sources) != 1 || emitter.sources[0] != filepath.Join(workDir, "js", "main.jsx") {
		t.Fatalf("unexpected emitter source %v", emitter.sources)
	}
}

func TestCompileWorkDirNeedingEscapes(t *testing.T) {
	workDir := filepath.Join(t.TempDir(), "my drawings #1")
	base := FileURL(workDir)
	if !strings.Contains(base, "my%20drawings%20%231") {
		t.Fatalf("expected escaped working directory url, got %s", base)
	}
	emitter := &fakeEmitter{result: &Result{Files: map[string][]byte{
		base + "/js/sub%20dir/app.jsx.js": []byte("ok"),
	}}}
	compiler, err := New(emitter, workDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := compiler.Compile(context.Background(), "/js/sub dir/app.jsx.js")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if string(out) != "ok" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCompileNoMatchingOutput(t *testing.T) {
	workDir := t.TempDir()
	emitter := &fakeEmitter{result: &Result{Files: map[string][]byte{
		FileURL(workDir) + "/js/other.jsx.js": []byte("other"),
	}}}
	compiler, err := New(emitter, workDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = compiler.Compile(context.Background(), "/js/main.jsx.js")
	if !errors.Is(err, ErrNoMatchingOutput) {
		t.Fatalf("expected ErrNoMatchingOutput, got %v", err)
	}
}

func TestCompileEmitterErrorIsVerbatim(t *testing.T) {
	boom := errors.New(`js/main.jsx:3:4: Expected ">" but found "}"`)
	compiler, err := New(&fakeEmitter{err: boom}, t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = compiler.Compile(context.Background(), "/js/main.jsx.js")
	if err == nil || err.Error() != boom.Error() {
		t.Fatalf("expected emitter error verbatim, got %v", err)
	}
}

func TestSourcePathRejectsTraversal(t *testing.T) {
	compiler, err := New(&fakeEmitter{}, t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, p := range []string{"/../secret.jsx.js", "/js/../../etc/passwd.jsx.js", "/.js"} {
		if _, err := compiler.SourcePath(p); err == nil {
			t.Fatalf("expected %s to be rejected", p)
		}
	}
	if _, err := compiler.SourcePath("/js/../js/main.jsx.js"); err != nil {
		t.Fatalf("expected in-tree path to be accepted: %v", err)
	}
}

func TestShortName(t *testing.T) {
	cases := []struct {
		base string
		name string
		want string
	}{
		{"file:///home/u/app", "file:///home/u/app/js/main.jsx.js", "/js/main.jsx.js"},
		{"file:///home/u/app", "file:///home/u/app/index.js", "/index.js"},
		{"file:///home/u/app", "file:///home/u/lib/x.js", "/lib/x.js"},
		{"file:///home/u/my%20app", "file:///home/u/my%20app/a%20b.jsx.js", "/a b.jsx.js"},
	}
	for _, tc := range cases {
		if got := shortName(tc.base, tc.name); got != tc.want {
			t.Fatalf("shortName(%q, %q) = %q, want %q", tc.base, tc.name, got, tc.want)
		}
	}
}

func TestEsbuildEmitterCompilesJSX(t *testing.T) {
	workDir := filepath.Join(t.TempDir(), "draw board")
	if err := os.MkdirAll(filepath.Join(workDir, "js"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	source := "import * as React from \"react\";\nexport default function App() {\n  return <div className=\"wrapper\">hi</div>;\n}\n"
	if err := os.WriteFile(filepath.Join(workDir, "js", "app.jsx"), []byte(source), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	compiler, err := New(&EsbuildEmitter{}, workDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := compiler.Compile(context.Background(), "/js/app.jsx.js")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	code := string(out)
	if !strings.Contains(code, "React.createElement") {
		t.Fatalf("expected classic JSX output, got:\n%s", code)
	}
	if !strings.Contains(code, `from "react"`) {
		t.Fatalf("expected bare import to be preserved, got:\n%s", code)
	}
}

func TestCompileMatchesDirectEmit(t *testing.T) {
	workDir := filepath.Join(t.TempDir(), "draw board")
	if err := os.MkdirAll(filepath.Join(workDir, "js"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	source := "import { App } from \"./app.jsx.js\";\nconst root = <App title=\"drawing\" />;\nexport default root;\n"
	sourcePath := filepath.Join(workDir, "js", "main.jsx")
	if err := os.WriteFile(sourcePath, []byte(source), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	emitter := &EsbuildEmitter{}
	direct, err := emitter.Emit(context.Background(), sourcePath)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	want, ok := direct.Files[FileURL(sourcePath+".js")]
	if !ok {
		t.Fatalf("direct emit has no output for %s", sourcePath)
	}

	compiler, err := New(emitter, workDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := compiler.Compile(context.Background(), "/js/main.jsx.js")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("compiled module differs from direct emit:\n%s\n---\n%s", got, want)
	}
}

func TestEsbuildEmitterSyntaxError(t *testing.T) {
	workDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workDir, "broken.jsx"), []byte("export const x = <div>;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	compiler, err := New(&EsbuildEmitter{}, workDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = compiler.Compile(context.Background(), "/broken.jsx.js")
	if err == nil || err.Error() == "" {
		t.Fatalf("expected compile error, got %v", err)
	}
}

func TestParseOptions(t *testing.T) {
	if _, err := ParseJSX("automatic"); err != nil {
		t.Fatalf("jsx: %v", err)
	}
	if _, err := ParseJSX("weird"); err == nil {
		t.Fatalf("expected jsx error")
	}
	if _, err := ParseTarget("ES2020"); err != nil {
		t.Fatalf("target: %v", err)
	}
	if _, err := ParseSourcemap("sometimes"); err == nil {
		t.Fatalf("expected sourcemap error")
	}
}
