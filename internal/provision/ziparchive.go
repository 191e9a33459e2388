// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"os"
	"strings"

	"pyforge-cli/internal/archive"
	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/fetch"
	"pyforge-cli/internal/layout"
)

// ZipArchives provisions environments from downloadable zip archives:
// embeddable CPython builds, PyPy binary releases, IronPython releases.
type ZipArchives struct {
	deps Deps
	envs []*envspec.Environment
}

// NewZipArchives builds the zip-based install category.
func NewZipArchives(d Deps, envs []*envspec.Environment) *ZipArchives {
	return &ZipArchives{deps: d, envs: envs}
}

// Name implements Provisioner.
func (p *ZipArchives) Name() string { return "zips" }

// Dependencies implements Provisioner. Zip installs are roots.
func (p *ZipArchives) Dependencies() []string { return nil }

// Empty implements Provisioner.
func (p *ZipArchives) Empty() bool { return len(p.envs) == 0 }

// Provision extracts each archive into its environment directory.
func (p *ZipArchives) Provision(ctx context.Context) error {
	var failed int
	for _, env := range p.envs {
		if exists(env.EnvDir) {
			p.deps.Log.Debug("already provisioned", "env", env.Name, "dir", env.EnvDir)
			continue
		}
		if err := p.provisionOne(ctx, env); err != nil {
			p.deps.Log.Error("failed to provision environment", "env", env.Name, "error", err)
			failed++
			continue
		}
		if err := p.deps.Packages.PipInstall(ctx, env, env.Packages); err != nil {
			if missingCapability(err) {
				p.deps.Log.Warn("skipping package install", "env", env.Name, "reason", err)
				continue
			}
			p.deps.Log.Error("failed to install packages", "env", env.Name, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d environments failed", failed, len(p.envs))
	}
	return nil
}

// provisionOne downloads, extracts and flattens one archive, then makes
// sure pip is usable when the environment has a declared type. The source
// URL is validated before anything is downloaded.
func (p *ZipArchives) provisionOne(ctx context.Context, env *envspec.Environment) error {
	name, err := fetch.Filename(env.URL)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(name, ".zip") {
		return &UnsupportedArchiveError{URL: env.URL}
	}

	archivePath, err := p.deps.Fetcher.Fetch(ctx, env.URL, p.deps.ScratchDir)
	if err != nil {
		return err
	}
	if err := archive.ExtractZip(archivePath, env.EnvDir); err != nil {
		return err
	}
	if err := archive.FlattenSingleDir(env.EnvDir); err != nil {
		return err
	}

	if env.Type != "" {
		if err := p.ensurePip(ctx, env); err != nil {
			return err
		}
	}

	// The extracted tree is the artifact; the archive is no longer needed.
	if err := os.Remove(archivePath); err != nil {
		p.deps.Log.Warn("failed to delete archive", "path", archivePath, "error", err)
	}
	return nil
}

// ensurePip bootstraps pip when the extracted tree lacks it, and
// force-upgrades pip and setuptools when the tree already ships one
// (embedded distributions often bundle stale copies).
func (p *ZipArchives) ensurePip(ctx context.Context, env *envspec.Environment) error {
	pip, err := layout.ResolveExecutable(env.Type, env.EnvDir, p.deps.Platform, "pip")
	if err != nil {
		return err
	}
	if !exists(pip) {
		return p.deps.bootstrapPip(ctx, env)
	}
	return p.deps.Runner.Run(ctx, execrun.Command{
		Path: pip,
		Args: []string{"install", "--upgrade", "--force-reinstall", "pip", "setuptools"},
	})
}
