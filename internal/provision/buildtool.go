// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pyforge-cli/internal/archive"
	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
)

const (
	// pyenvArchiveURL is the pyenv source archive; python-build ships inside
	// it as a plugin.
	pyenvArchiveURL = "https://github.com/pyenv/pyenv/archive/refs/heads/master.zip"

	// buildToolDirName is the python-build install prefix inside the
	// scratch directory.
	buildToolDirName = "python-build"
)

// buildToolExecutable returns the installed python-build path.
func (p *NativePythons) buildToolExecutable() string {
	return filepath.Join(p.deps.ScratchDir, buildToolDirName, "bin", "python-build")
}

// ensureBuildTool installs python-build once per run: download the pyenv
// archive, extract it, run the plugin's install script with the scratch
// prefix, and clean up the extraction tree.
func (p *NativePythons) ensureBuildTool(ctx context.Context) error {
	if p.buildToolReady {
		return nil
	}
	tool := p.buildToolExecutable()
	if exists(tool) {
		p.buildToolReady = true
		return nil
	}

	zipPath, err := p.deps.Fetcher.Fetch(ctx, pyenvArchiveURL, p.deps.ScratchDir)
	if err != nil {
		return err
	}

	extractDir := filepath.Join(p.deps.ScratchDir, "pyenv-src")
	if err := archive.ExtractZip(zipPath, extractDir); err != nil {
		return err
	}
	if err := archive.FlattenSingleDir(extractDir); err != nil {
		return err
	}

	install := filepath.Join(extractDir, "plugins", "python-build", "install.sh")
	prefix := filepath.Join(p.deps.ScratchDir, buildToolDirName)
	err = p.deps.Runner.Run(ctx, execrun.Command{
		Path: "bash",
		Args: []string{install},
		Env:  []string{"PREFIX=" + prefix},
	})
	if err != nil {
		return fmt.Errorf("failed to install python-build: %w", err)
	}

	// Temporary files only; the downloaded archive stays cached.
	if err := os.RemoveAll(extractDir); err != nil {
		p.deps.Log.Warn("failed to clean up build tool sources", "dir", extractDir, "error", err)
	}

	p.buildToolReady = true
	return nil
}

// installWithBuildTool compiles and installs an interpreter with
// python-build. The tool accepts CPython versions ("3.11.4") and prefixed
// PyPy versions ("pypy3.9-7.3.12") alike.
func (p *NativePythons) installWithBuildTool(ctx context.Context, env *envspec.Environment) error {
	if err := p.ensureBuildTool(ctx); err != nil {
		return err
	}
	return p.deps.Runner.Run(ctx, execrun.Command{
		Path: p.buildToolExecutable(),
		Args: []string{env.Version, env.EnvDir},
	})
}
