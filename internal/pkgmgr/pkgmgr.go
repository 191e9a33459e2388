// SPDX-License-Identifier: MPL-2.0

// Package pkgmgr installs packages into already-provisioned environments by
// invoking the environment's own package manager (pip or conda).
package pkgmgr

import (
	"context"

	"github.com/charmbracelet/log"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/layout"
	"pyforge-cli/internal/platform"
)

// Installer invokes pip and conda inside provisioned environments.
type Installer struct {
	Runner   execrun.Runner
	Platform platform.Platform

	// PipOptions are global options appended to every "pip install"
	// invocation (e.g. an index URL). Empty by default.
	PipOptions []string

	Log *log.Logger
}

// PipInstall installs packages into env with pip. It is a no-op when the
// package list is empty or the environment has no declared type (a plain
// file tree has no package manager).
//
// IronPython cannot run pip as a standalone executable reliably, so the
// install goes through the interpreter's ensurepip-provisioned module with
// the flags IronPython needs for pip's frame introspection.
func (i *Installer) PipInstall(ctx context.Context, env *envspec.Environment, packages []string) error {
	if len(packages) == 0 || env.Type == "" {
		return nil
	}

	i.Log.Info("installing packages", "env", env.Name, "packages", packages)

	if env.Type == envspec.IronPython {
		ipy, err := layout.Interpreter(env, i.Platform)
		if err != nil {
			return err
		}
		args := []string{"-X:Frames", "-m", "pip", "install"}
		args = append(args, i.PipOptions...)
		args = append(args, packages...)
		return i.Runner.Run(ctx, execrun.Command{Path: ipy, Args: args})
	}

	pip, err := layout.ResolveExecutable(env.Type, env.EnvDir, i.Platform, "pip")
	if err != nil {
		return err
	}
	args := []string{"install"}
	args = append(args, i.PipOptions...)
	args = append(args, packages...)
	return i.Runner.Run(ctx, execrun.Command{Path: pip, Args: args})
}

// CondaInstall installs Conda-channel packages into env. It is a no-op when
// the package list is empty. The conda executable comes from the owning
// distribution: for a sub-environment that is its source, for a distribution
// the environment itself.
func (i *Installer) CondaInstall(ctx context.Context, env *envspec.CondaEnvironment, packages []string) error {
	if len(packages) == 0 {
		return nil
	}

	condaHome := env.EnvDir
	if env.SourceEnv != nil {
		condaHome = env.SourceEnv.EnvDir
	}
	conda, err := layout.ResolveExecutable(envspec.Conda, condaHome, i.Platform, "conda")
	if err != nil {
		return err
	}

	i.Log.Info("installing conda packages", "env", env.Name, "packages", packages)

	args := []string{"install", "-y", "-p", env.EnvDir}
	args = append(args, packages...)
	return i.Runner.Run(ctx, execrun.Command{Path: conda, Args: args})
}
