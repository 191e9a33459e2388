// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pyforge-cli/internal/envspec"
)

type (
	// Files materializes literal file content. Independent of environment
	// provisioning and of the Links category.
	Files struct {
		deps  Deps
		specs []envspec.FileSpec
	}

	// Links creates hard links. Independent of everything else.
	Links struct {
		deps  Deps
		specs []envspec.LinkSpec
	}
)

// NewFiles builds the file materialization category.
func NewFiles(d Deps, specs []envspec.FileSpec) *Files {
	return &Files{deps: d, specs: specs}
}

// Name implements Provisioner.
func (p *Files) Name() string { return "files" }

// Dependencies implements Provisioner.
func (p *Files) Dependencies() []string { return nil }

// Empty implements Provisioner.
func (p *Files) Empty() bool { return len(p.specs) == 0 }

// Provision writes each file unless it already exists, in which case the
// existing content is left untouched and a warning is logged.
func (p *Files) Provision(_ context.Context) error {
	var failed int
	for _, spec := range p.specs {
		if exists(spec.File) {
			p.deps.Log.Warn("file already exists, leaving content untouched", "file", spec.File)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(spec.File), 0o755); err != nil {
			p.deps.Log.Error("failed to create parent directory", "file", spec.File, "error", err)
			failed++
			continue
		}
		if err := os.WriteFile(spec.File, []byte(spec.Content), 0o644); err != nil {
			p.deps.Log.Error("failed to write file", "file", spec.File, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(p.specs))
	}
	return nil
}

// NewLinks builds the link materialization category.
func NewLinks(d Deps, specs []envspec.LinkSpec) *Links {
	return &Links{deps: d, specs: specs}
}

// Name implements Provisioner.
func (p *Links) Name() string { return "links" }

// Dependencies implements Provisioner.
func (p *Links) Dependencies() []string { return nil }

// Empty implements Provisioner.
func (p *Links) Empty() bool { return len(p.specs) == 0 }

// Provision hard-links each source unless the link already exists or the
// source is missing; both cases warn and skip without failing the run.
func (p *Links) Provision(_ context.Context) error {
	var failed int
	for _, spec := range p.specs {
		if exists(spec.Link) {
			p.deps.Log.Warn("link already exists", "link", spec.Link)
			continue
		}
		if !exists(spec.Source) {
			p.deps.Log.Warn("link source does not exist", "link", spec.Link, "source", spec.Source)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(spec.Link), 0o755); err != nil {
			p.deps.Log.Error("failed to create parent directory", "link", spec.Link, "error", err)
			failed++
			continue
		}
		if err := os.Link(spec.Source, spec.Link); err != nil {
			p.deps.Log.Error("failed to create link", "link", spec.Link, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d links failed", failed, len(p.specs))
	}
	return nil
}
