// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/platform"
)

func TestVirtualEnvs_Provision(t *testing.T) {
	t.Parallel()
	d, runner, _ := testDeps(t, platform.Linux)

	src := &envspec.Environment{Name: "py311", Type: envspec.Python, EnvDir: "/envs/py311"}
	env := &envspec.Environment{
		Name:      "venv-app",
		Type:      envspec.VirtualEnv,
		EnvDir:    filepath.Join(t.TempDir(), "venv-app"),
		SourceEnv: src,
		Packages:  []string{"pytest"},
	}

	p := NewVirtualEnvs(d, []*envspec.Environment{env})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}

	// virtualenv install into source, virtualenv invocation, package install.
	if len(runner.Commands) != 3 {
		t.Fatalf("ran %d commands: %v", len(runner.Commands), runner.Commands)
	}

	toolInstall := runner.Commands[0]
	if toolInstall.Path != filepath.Join("/envs/py311", "bin", "pip") {
		t.Errorf("virtualenv tool install used %q", toolInstall.Path)
	}
	if !slices.Contains(toolInstall.Args, "virtualenv") {
		t.Errorf("tool install args = %v", toolInstall.Args)
	}

	create := runner.Commands[1]
	if create.Path != filepath.Join("/envs/py311", "bin", "virtualenv") {
		t.Errorf("virtualenv executable = %q", create.Path)
	}
	if !slices.Equal(create.Args, []string{"--always-copy", env.EnvDir}) {
		t.Errorf("create args = %v", create.Args)
	}
	if create.Dir != "/envs/py311" {
		t.Errorf("working directory = %q, want the source envDir", create.Dir)
	}

	pkgInstall := runner.Commands[2]
	if pkgInstall.Path != filepath.Join(env.EnvDir, "bin", "pip") {
		t.Errorf("package install used %q", pkgInstall.Path)
	}
}

func TestVirtualEnvs_IronPythonSourceSkippedWithWarning(t *testing.T) {
	t.Parallel()
	d, runner, _ := testDeps(t, platform.Windows)

	src := &envspec.Environment{Name: "ipy", Type: envspec.IronPython, EnvDir: `C:\envs\ipy`}
	env := &envspec.Environment{
		Name:      "venv-ipy",
		Type:      envspec.VirtualEnv,
		EnvDir:    filepath.Join(t.TempDir(), "venv-ipy"),
		SourceEnv: src,
	}

	p := NewVirtualEnvs(d, []*envspec.Environment{env})
	// Skip, not failure: Provision must return nil.
	if err := p.Provision(context.Background()); err != nil {
		t.Fatalf("IronPython source must be a non-fatal skip: %v", err)
	}
	if len(runner.Commands) != 0 {
		t.Errorf("no subprocess may run for a skipped virtualenv: %v", runner.Commands)
	}
}

func TestVirtualEnvs_UntypedSourceFails(t *testing.T) {
	t.Parallel()
	d, runner, _ := testDeps(t, platform.Linux)

	src := &envspec.Environment{Name: "files-only", EnvDir: "/envs/files-only"}
	env := &envspec.Environment{
		Name:      "venv-bad",
		Type:      envspec.VirtualEnv,
		EnvDir:    filepath.Join(t.TempDir(), "venv-bad"),
		SourceEnv: src,
	}
	p := NewVirtualEnvs(d, []*envspec.Environment{env})
	if err := p.Provision(context.Background()); err == nil {
		t.Fatal("expected error for untyped source environment")
	}
	if len(runner.Commands) != 0 {
		t.Errorf("no subprocess may run: %v", runner.Commands)
	}
}

func TestVirtualEnvs_IdempotentOnExistingDir(t *testing.T) {
	t.Parallel()
	d, runner, _ := testDeps(t, platform.Linux)

	src := &envspec.Environment{Name: "py311", Type: envspec.Python, EnvDir: "/envs/py311"}
	env := &envspec.Environment{Name: "venv", Type: envspec.VirtualEnv, EnvDir: t.TempDir(), SourceEnv: src, Packages: []string{"pytest"}}
	p := NewVirtualEnvs(d, []*envspec.Environment{env})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(runner.Commands) != 0 {
		t.Errorf("existing envDir must suppress all work: %v", runner.Commands)
	}
}
