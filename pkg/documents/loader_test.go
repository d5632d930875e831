package documents

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

const testDrawing = `{"type":"excalidraw","version":2,"elements":[]}`

func TestLoadReturnsRawBytes(t *testing.T) {
	loader := NewLoader(fstest.MapFS{
		"drawing.excalidraw":     {Data: []byte(testDrawing)},
		"boards/plan.excalidraw": {Data: []byte("not even json")},
	})
	got, err := loader.Load(context.Background(), "/drawing.excalidraw.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != testDrawing {
		t.Fatalf("unexpected content %q", got)
	}
	got, err = loader.Load(context.Background(), "/boards/plan.excalidraw.json")
	if err != nil {
		t.Fatalf("load nested: %v", err)
	}
	if string(got) != "not even json" {
		t.Fatalf("content must not be reencoded, got %q", got)
	}
}

func TestLoadMissing(t *testing.T) {
	loader := NewLoader(fstest.MapFS{})
	_, err := loader.Load(context.Background(), "/missing.excalidraw.json")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if err.Error() == "" {
		t.Fatalf("expected a message")
	}
}

func TestFilePath(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "/drawing.excalidraw.json", want: "drawing.excalidraw"},
		{in: "/a/b.excalidraw.json", want: "a/b.excalidraw"},
		{in: "/../etc/passwd.excalidraw.json", wantErr: true},
		{in: "/a//b.excalidraw.json", wantErr: true},
		{in: ".json", wantErr: true},
		{in: "json", wantErr: true},
	}
	for _, tc := range cases {
		got, err := FilePath(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("FilePath(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("FilePath(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("FilePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
