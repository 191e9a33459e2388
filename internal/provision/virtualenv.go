// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/layout"
)

// VirtualEnvs provisions virtualenvs derived from another environment.
type VirtualEnvs struct {
	deps Deps
	envs []*envspec.Environment
}

// NewVirtualEnvs builds the virtualenv category.
func NewVirtualEnvs(d Deps, envs []*envspec.Environment) *VirtualEnvs {
	return &VirtualEnvs{deps: d, envs: envs}
}

// Name implements Provisioner.
func (p *VirtualEnvs) Name() string { return "virtualenvs" }

// Dependencies implements Provisioner: every category that can host a
// virtualenv source must have finished first.
func (p *VirtualEnvs) Dependencies() []string { return []string{"pythons", "zips", "condas"} }

// Empty implements Provisioner.
func (p *VirtualEnvs) Empty() bool { return len(p.envs) == 0 }

// Provision creates each virtualenv from its source environment.
func (p *VirtualEnvs) Provision(ctx context.Context) error {
	var failed int
	for _, env := range p.envs {
		src := env.SourceEnv
		if src == nil || src.Type == "" {
			p.deps.Log.Error("virtualenv has no typed source environment", "env", env.Name)
			failed++
			continue
		}
		// IronPython cannot host virtualenvs; this is a skip, not a failure.
		if src.Type == envspec.IronPython {
			p.deps.Log.Warn("skipping virtualenv: IronPython environments cannot host one", "env", env.Name, "source", src.Name)
			continue
		}
		if exists(env.EnvDir) {
			p.deps.Log.Debug("already provisioned", "env", env.Name, "dir", env.EnvDir)
			continue
		}
		if err := p.provisionOne(ctx, env, src); err != nil {
			p.deps.Log.Error("failed to provision virtualenv", "env", env.Name, "error", err)
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

// provisionOne installs the virtualenv tool into the source environment and
// runs it against the target directory. --always-copy avoids symlinks back
// into the source, producing a standalone environment.
func (p *VirtualEnvs) provisionOne(ctx context.Context, env, src *envspec.Environment) error {
	if err := p.deps.Packages.PipInstall(ctx, src, []string{"virtualenv"}); err != nil {
		return fmt.Errorf("failed to install virtualenv into %s: %w", src.Name, err)
	}

	tool, err := layout.ResolveExecutable(src.Type, src.EnvDir, p.deps.Platform, "virtualenv")
	if err != nil {
		return err
	}
	return p.deps.Runner.Run(ctx, execrun.Command{
		Path: tool,
		Args: []string{"--always-copy", env.EnvDir},
		Dir:  src.EnvDir,
	})
}
