// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeZip builds an archive from entry name -> content. Names ending in "/"
// become directories.
func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		if name[len(name)-1] == '/' {
			if _, err := w.Create(name); err != nil {
				t.Fatal(err)
			}
			continue
		}
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "test.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractZip(t *testing.T) {
	t.Parallel()
	src := writeZip(t, map[string]string{
		"bin/":       "",
		"bin/python": "#!interpreter",
		"README":     "hello",
	})
	dest := t.TempDir()
	if err := ExtractZip(src, dest); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dest, "bin", "python"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "#!interpreter" {
		t.Errorf("content = %q", b)
	}
}

func TestExtractZip_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()
	src := writeZip(t, map[string]string{"../evil.txt": "x"})
	if err := ExtractZip(src, t.TempDir()); err == nil {
		t.Fatal("expected error for path escaping the destination")
	}
}

func TestFlattenSingleDir_Flattens(t *testing.T) {
	t.Parallel()
	src := writeZip(t, map[string]string{
		"foo/":        "",
		"foo/python":  "bin",
		"foo/lib/":    "",
		"foo/lib/a.py": "pass",
	})
	dest := t.TempDir()
	if err := ExtractZip(src, dest); err != nil {
		t.Fatal(err)
	}
	if err := FlattenSingleDir(dest); err != nil {
		t.Fatal(err)
	}

	// foo's children now live directly in dest, not nested under foo.
	if _, err := os.Stat(filepath.Join(dest, "python")); err != nil {
		t.Errorf("python not flattened: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "lib", "a.py")); err != nil {
		t.Errorf("lib/a.py not flattened: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "foo")); !os.IsNotExist(err) {
		t.Error("wrapper directory foo still present")
	}
}

func TestFlattenSingleDir_SingleFileIsCorrupt(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "only.bin"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := FlattenSingleDir(dir)
	var ce *CorruptArchiveError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CorruptArchiveError, got %v", err)
	}
	if ce.Entry != "only.bin" {
		t.Errorf("entry = %q", ce.Entry)
	}
}

func TestFlattenSingleDir_MultipleEntriesUntouched(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := FlattenSingleDir(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bin")); err != nil {
		t.Errorf("bin should be untouched: %v", err)
	}
}
