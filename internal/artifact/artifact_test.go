package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtomic_CreatesDirsAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a", "b", "script.txt")
	if err := WriteAtomic(p, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "hello" {
		t.Fatalf("read back %q, %v", b, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(p))
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact, found %d entries", len(entries))
	}
}

func TestRequire(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.mp3")
	if err := os.WriteFile(small, []byte("12"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Require(small, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		name string
		path string
		min  int64
	}{
		{"too small", small, 3},
		{"missing", filepath.Join(dir, "nope"), 0},
		{"dir", dir, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Require(tt.path, tt.min); !errors.Is(err, ErrMissing) {
				t.Fatalf("expected ErrMissing, got %v", err)
			}
		})
	}

	Discard(small, "")
	if _, err := os.Stat(small); !os.IsNotExist(err) {
		t.Fatalf("expected file removed")
	}
}
