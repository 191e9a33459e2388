// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/platform"
)

func TestFiles_WritesExactContent(t *testing.T) {
	t.Parallel()
	d, _, _ := testDeps(t, platform.Linux)

	target := filepath.Join(t.TempDir(), "etc", "pydistutils.cfg")
	p := NewFiles(d, []envspec.FileSpec{{File: target, Content: "[install]\nprefix=\n"}})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[install]\nprefix=\n" {
		t.Errorf("content = %q", b)
	}
}

func TestFiles_ExistingFileUntouched(t *testing.T) {
	t.Parallel()
	d, _, _ := testDeps(t, platform.Linux)

	target := filepath.Join(t.TempDir(), "settings.cfg")
	if err := os.WriteFile(target, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewFiles(d, []envspec.FileSpec{{File: target, Content: "replacement"}})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(target)
	if string(b) != "original" {
		t.Errorf("existing file was modified: %q", b)
	}
}

func TestLinks_CreatesHardLink(t *testing.T) {
	t.Parallel()
	d, _, _ := testDeps(t, platform.Linux)

	dir := t.TempDir()
	source := filepath.Join(dir, "python3")
	if err := os.WriteFile(source, []byte("interpreter"), 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "python")

	p := NewLinks(d, []envspec.LinkSpec{{Link: link, Source: source}})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(link)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "interpreter" {
		t.Errorf("link content = %q", b)
	}
}

func TestLinks_MissingSourceSkipped(t *testing.T) {
	t.Parallel()
	d, _, _ := testDeps(t, platform.Linux)

	dir := t.TempDir()
	link := filepath.Join(dir, "python")
	p := NewLinks(d, []envspec.LinkSpec{{Link: link, Source: filepath.Join(dir, "gone")}})

	// Missing source warns and skips; it is not an error.
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(link); !os.IsNotExist(err) {
		t.Error("link must not be created when the source is missing")
	}
}

func TestLinks_ExistingLinkSkipped(t *testing.T) {
	t.Parallel()
	d, _, _ := testDeps(t, platform.Linux)

	dir := t.TempDir()
	source := filepath.Join(dir, "a")
	link := filepath.Join(dir, "b")
	for _, f := range []string{source, link} {
		if err := os.WriteFile(f, []byte(f), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	p := NewLinks(d, []envspec.LinkSpec{{Link: link, Source: source}})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(link)
	if string(b) != link {
		t.Errorf("existing link target was replaced: %q", b)
	}
}
