// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"strings"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/platform"
)

// condaRepoBaseURL is the Continuum installer repository.
const condaRepoBaseURL = "https://repo.continuum.io"

// CondaDownloadURL computes the installer location for a Conda distribution.
// Miniconda releases live in the "miniconda" channel, everything else
// (Anaconda) in "archive". The filename encodes OS, architecture and the
// platform installer extension.
func CondaDownloadURL(version string, p platform.Platform, is64 bool) string {
	channel := "archive"
	if strings.Contains(strings.ToLower(version), "miniconda") {
		channel = "miniconda"
	}
	arch := "x86"
	if is64 {
		arch = "x86_64"
	}
	return fmt.Sprintf("%s/%s/%s-%s-%s%s", condaRepoBaseURL, channel, version, p.CondaOS(), arch, p.InstallerExt())
}

// CondaDistributions provisions Miniconda and Anaconda installations.
type CondaDistributions struct {
	deps Deps
	envs []*envspec.CondaEnvironment
}

// NewCondaDistributions builds the Conda distribution category.
func NewCondaDistributions(d Deps, envs []*envspec.CondaEnvironment) *CondaDistributions {
	return &CondaDistributions{deps: d, envs: envs}
}

// Name implements Provisioner.
func (p *CondaDistributions) Name() string { return "condas" }

// Dependencies implements Provisioner. Distribution installs are roots.
func (p *CondaDistributions) Dependencies() []string { return nil }

// Empty implements Provisioner.
func (p *CondaDistributions) Empty() bool { return len(p.envs) == 0 }

// Provision installs each distribution and its pip and conda packages.
func (p *CondaDistributions) Provision(ctx context.Context) error {
	var failed int
	for _, env := range p.envs {
		if exists(env.EnvDir) {
			p.deps.Log.Debug("already provisioned", "env", env.Name, "dir", env.EnvDir)
			continue
		}
		if err := p.provisionOne(ctx, env); err != nil {
			p.deps.Log.Error("failed to provision distribution", "env", env.Name, "error", err)
			failed++
			continue
		}
		if err := p.installPackages(ctx, env); err != nil {
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

// provisionOne downloads the installer when not cached and runs it silently.
func (p *CondaDistributions) provisionOne(ctx context.Context, env *envspec.CondaEnvironment) error {
	url := CondaDownloadURL(env.Version, p.deps.Platform, env.Is64)
	installer, err := p.deps.Fetcher.Fetch(ctx, url, p.deps.ScratchDir)
	if err != nil {
		return err
	}

	var cmd execrun.Command
	if p.deps.Platform.IsWindows() {
		cmd = execrun.Command{
			Path: installer,
			// /D must come last and takes no quoting.
			Args: []string{"/S", "/InstallationType=JustMe", "/AddToPath=0", "/RegisterPython=0", "/D=" + env.EnvDir},
		}
	} else {
		cmd = execrun.Command{
			Path: "bash",
			Args: []string{installer, "-b", "-p", env.EnvDir},
		}
	}
	if err := p.deps.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("installer failed: %w", err)
	}
	return nil
}

func (p *CondaDistributions) installPackages(ctx context.Context, env *envspec.CondaEnvironment) error {
	if err := p.deps.Packages.PipInstall(ctx, &env.Environment, env.Packages); err != nil {
		return err
	}
	return p.deps.Packages.CondaInstall(ctx, env, env.CondaPackages)
}
