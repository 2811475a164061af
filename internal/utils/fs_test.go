package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanTextures(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_n.png", "a_d.png", "c_s.TGA", "notes.txt", "model.fbx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "DDS"), 0755); err != nil {
		t.Fatal(err)
	}
	// A png inside a subfolder must not be picked up.
	if err := os.WriteFile(filepath.Join(dir, "DDS", "old_d.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ScanTextures(dir)
	if err != nil {
		t.Fatalf("ScanTextures: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a_d.png"),
		filepath.Join(dir, "b_n.png"),
		filepath.Join(dir, "c_s.TGA"),
	}
	if len(paths) != len(want) {
		t.Fatalf("ScanTextures = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestEnsureDirIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Errorf("pre-existing directory must not error: %v", err)
	}
	if !FileExists(dir) {
		t.Error("directory not created")
	}
}
