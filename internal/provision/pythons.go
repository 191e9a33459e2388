// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
)

// NativePythons provisions interpreters installed by a real installer:
// CPython via python-build on POSIX and the python.org installers on
// Windows, PyPy via python-build, and Jython via its installer jar.
type NativePythons struct {
	deps Deps
	envs []*envspec.Environment

	// buildToolReady flips after the one-time python-build install.
	buildToolReady bool
}

// NewNativePythons builds the native install category.
func NewNativePythons(d Deps, envs []*envspec.Environment) *NativePythons {
	return &NativePythons{deps: d, envs: envs}
}

// Name implements Provisioner.
func (p *NativePythons) Name() string { return "pythons" }

// Dependencies implements Provisioner. Native installs are roots.
func (p *NativePythons) Dependencies() []string { return nil }

// Empty implements Provisioner.
func (p *NativePythons) Empty() bool { return len(p.envs) == 0 }

// Provision installs every environment in the category. A failure in one
// environment aborts only that environment's remaining steps.
func (p *NativePythons) Provision(ctx context.Context) error {
	var failed int
	for _, env := range p.envs {
		if exists(env.EnvDir) {
			p.deps.Log.Debug("already provisioned", "env", env.Name, "dir", env.EnvDir)
			continue
		}
		if err := p.provisionOne(ctx, env); err != nil {
			if missingCapability(err) {
				p.deps.Log.Warn("skipping environment", "env", env.Name, "reason", err)
				continue
			}
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

// provisionOne dispatches on the environment type. The switch is exhaustive
// over the closed type set so a new type surfaces here at review time.
func (p *NativePythons) provisionOne(ctx context.Context, env *envspec.Environment) error {
	switch env.Type {
	case envspec.Python, envspec.PyPy:
		if p.deps.Platform.IsWindows() {
			if env.Type == envspec.PyPy {
				return &UnsupportedEnvironmentTypeError{Type: env.Type, Platform: p.deps.Platform}
			}
			return p.installWindows(ctx, env)
		}
		return p.installWithBuildTool(ctx, env)
	case envspec.Jython:
		return p.installJython(ctx, env)
	case envspec.IronPython, envspec.Conda, envspec.VirtualEnv:
		return &UnsupportedEnvironmentTypeError{Type: env.Type, Platform: p.deps.Platform}
	default:
		return &UnsupportedEnvironmentTypeError{Type: env.Type, Platform: p.deps.Platform}
	}
}

// jythonInstallerURL returns the Maven Central location of the Jython
// installer jar for a version.
func jythonInstallerURL(version string) string {
	return fmt.Sprintf("https://repo1.maven.org/maven2/org/python/jython-installer/%s/jython-installer-%s.jar", version, version)
}

// installJython runs the installer jar in headless standard mode.
func (p *NativePythons) installJython(ctx context.Context, env *envspec.Environment) error {
	jar, err := p.deps.Fetcher.Fetch(ctx, jythonInstallerURL(env.Version), p.deps.ScratchDir)
	if err != nil {
		return err
	}
	return p.deps.Runner.Run(ctx, execrun.Command{
		Path: "java",
		Args: []string{"-jar", jar, "-s", "-d", env.EnvDir},
	})
}
