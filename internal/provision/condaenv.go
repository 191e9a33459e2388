// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/layout"
)

// CondaSubEnvs provisions environments created by "conda create" inside an
// installed distribution.
type CondaSubEnvs struct {
	deps Deps
	envs []*envspec.CondaEnvironment
}

// NewCondaSubEnvs builds the Conda sub-environment category.
func NewCondaSubEnvs(d Deps, envs []*envspec.CondaEnvironment) *CondaSubEnvs {
	return &CondaSubEnvs{deps: d, envs: envs}
}

// Name implements Provisioner.
func (p *CondaSubEnvs) Name() string { return "conda-envs" }

// Dependencies implements Provisioner: the owning distribution must exist.
func (p *CondaSubEnvs) Dependencies() []string { return []string{"condas"} }

// Empty implements Provisioner.
func (p *CondaSubEnvs) Empty() bool { return len(p.envs) == 0 }

// Provision creates each sub-environment. Directory presence alone decides
// whether an environment is skipped; a partially-created tree from an
// earlier failed run is not repaired.
func (p *CondaSubEnvs) Provision(ctx context.Context) error {
	var failed int
	for _, env := range p.envs {
		if exists(env.EnvDir) {
			p.deps.Log.Debug("already provisioned", "env", env.Name, "dir", env.EnvDir)
			continue
		}
		if err := p.provisionOne(ctx, env); err != nil {
			p.deps.Log.Error("failed to provision conda environment", "env", env.Name, "error", err)
			failed++
			continue
		}
		if err := p.deps.Packages.PipInstall(ctx, &env.Environment, env.Packages); err != nil {
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

// provisionOne runs the source distribution's conda to create the
// environment with the requested Python version and conda packages.
func (p *CondaSubEnvs) provisionOne(ctx context.Context, env *envspec.CondaEnvironment) error {
	conda, err := layout.ResolveExecutable(envspec.Conda, env.SourceEnv.EnvDir, p.deps.Platform, "conda")
	if err != nil {
		return err
	}
	args := []string{"create", "-p", env.EnvDir, "-y", "python=" + env.Version}
	args = append(args, env.CondaPackages...)
	return p.deps.Runner.Run(ctx, execrun.Command{Path: conda, Args: args})
}
