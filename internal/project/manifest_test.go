package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[suite]
jobs = 4

[[pair]]
name = "basic"
vertex = "shaders/basic.vert"
fragment = "shaders/basic.frag"

[[pair]]
vertex = "shaders/lit.vert"
fragment = "shaders/lit.frag"
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Root != dir {
		t.Errorf("Root = %q, want %q", m.Root, dir)
	}
	if m.Suite.Jobs != 4 {
		t.Errorf("Jobs = %d, want 4", m.Suite.Jobs)
	}
	if len(m.Pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(m.Pairs))
	}
	if m.Pairs[0].Name != "basic" {
		t.Errorf("pair[0].Name = %q", m.Pairs[0].Name)
	}
	// Безымянная пара получает имя от vertex-файла.
	if m.Pairs[1].Name != "lit" {
		t.Errorf("pair[1].Name = %q, want lit", m.Pairs[1].Name)
	}
	want := filepath.Join(dir, "shaders", "basic.vert")
	if m.Pairs[0].Vertex != want {
		t.Errorf("pair[0].Vertex = %q, want %q", m.Pairs[0].Vertex, want)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "no pairs",
			content: "[suite]\njobs = 1\n",
			wantErr: ErrNoPairs,
		},
		{
			name:    "missing fragment",
			content: "[[pair]]\nvertex = \"a.vert\"\n",
			wantErr: ErrPairIncomplete,
		},
		{
			name:    "blank vertex",
			content: "[[pair]]\nvertex = \"  \"\nfragment = \"a.frag\"\n",
			wantErr: ErrPairIncomplete,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.content)
			_, err := LoadManifest(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadManifest err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadManifestBadTOML(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[[pair\n")
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[[pair]]\nvertex = \"a.vert\"\nfragment = \"a.frag\"\n")
	nested := filepath.Join(root, "shaders", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	path, ok, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if !ok {
		t.Fatal("manifest not found")
	}
	if path != filepath.Join(root, ManifestName) {
		t.Errorf("path = %q", path)
	}

	gotRoot, ok, err := FindProjectRoot(nested)
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot: ok=%v err=%v", ok, err)
	}
	if gotRoot != root {
		t.Errorf("root = %q, want %q", gotRoot, root)
	}
}

func TestFindManifestAbsent(t *testing.T) {
	_, ok, err := FindManifest(t.TempDir())
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if ok {
		t.Fatal("unexpected manifest")
	}
}
