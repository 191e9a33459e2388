// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/platform"
)

func TestWindowsInstallerFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		is64    bool
		want    string
	}{
		{"3.5.0", true, "python-3.5.0-amd64.exe"},
		{"3.11.4", false, "python-3.11.4.exe"},
		{"3.4.4", true, "python-3.4.4.amd64.msi"},
		{"2.7.14", false, "python-2.7.14.msi"},
	}
	for _, tt := range tests {
		if got := windowsInstallerFile(tt.version, tt.is64); got != tt.want {
			t.Errorf("windowsInstallerFile(%s, %v) = %q, want %q", tt.version, tt.is64, got, tt.want)
		}
	}
}

func TestUsesExeInstaller_CutoffAt350(t *testing.T) {
	t.Parallel()
	if !usesExeInstaller("3.5.0") {
		t.Error("3.5.0 must use the executable installer")
	}
	if usesExeInstaller("3.4.9") {
		t.Error("3.4.9 must use the MSI installer")
	}
	if !usesExeInstaller("3.10.0") {
		t.Error("3.10.0 must use the executable installer")
	}
}

func TestNativePythons_UnixBuildToolFlow(t *testing.T) {
	t.Parallel()
	d, runner, fetcher := testDeps(t, platform.Linux)
	fetcher.Content = map[string][]byte{
		pyenvArchiveURL: zipBytes(t, map[string]string{
			"pyenv-master/plugins/python-build/install.sh": "#!/bin/sh",
			"pyenv-master/README.md":                       "pyenv",
		}),
	}

	env := &envspec.Environment{
		Name:     "py311",
		Type:     envspec.Python,
		Version:  "3.11.4",
		EnvDir:   filepath.Join(t.TempDir(), "py311"),
		Packages: []string{"requests"},
	}
	p := NewNativePythons(d, []*envspec.Environment{env})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}

	// install.sh, python-build, pip install.
	if len(runner.Commands) != 3 {
		t.Fatalf("ran %d commands: %v", len(runner.Commands), runner.Commands)
	}
	install := runner.Commands[0]
	if install.Path != "bash" || !strings.HasSuffix(install.Args[0], "install.sh") {
		t.Errorf("build tool install = %v", install)
	}
	if !slices.ContainsFunc(install.Env, func(e string) bool { return strings.HasPrefix(e, "PREFIX=") }) {
		t.Errorf("install.sh must receive PREFIX, env = %v", install.Env)
	}

	build := runner.Commands[1]
	if filepath.Base(build.Path) != "python-build" {
		t.Errorf("build command = %q", build.Path)
	}
	if !slices.Equal(build.Args, []string{"3.11.4", env.EnvDir}) {
		t.Errorf("build args = %v", build.Args)
	}
}

func TestNativePythons_BuildToolInstalledOnce(t *testing.T) {
	t.Parallel()
	d, runner, fetcher := testDeps(t, platform.Linux)
	fetcher.Content = map[string][]byte{
		pyenvArchiveURL: zipBytes(t, map[string]string{
			"pyenv-master/plugins/python-build/install.sh": "#!/bin/sh",
			"pyenv-master/COMMANDS.md":                     "x",
		}),
	}

	envs := []*envspec.Environment{
		{Name: "py310", Type: envspec.Python, Version: "3.10.0", EnvDir: filepath.Join(t.TempDir(), "py310")},
		{Name: "py311", Type: envspec.Python, Version: "3.11.4", EnvDir: filepath.Join(t.TempDir(), "py311")},
	}
	p := NewNativePythons(d, envs)
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}

	var installerRuns int
	for _, cmd := range runner.Commands {
		if cmd.Path == "bash" {
			installerRuns++
		}
	}
	if installerRuns != 1 {
		t.Errorf("build tool installed %d times, want 1", installerRuns)
	}
}

func TestNativePythons_FailureIsolatedPerEnvironment(t *testing.T) {
	t.Parallel()
	d, _, fetcher := testDeps(t, platform.Linux)
	fetcher.Content = map[string][]byte{
		pyenvArchiveURL: zipBytes(t, map[string]string{
			"pyenv-master/plugins/python-build/install.sh": "#!/bin/sh",
			"pyenv-master/COMMANDS.md":                     "x",
		}),
	}
	runner := &execrun.Recorder{Fail: func(cmd execrun.Command) error {
		if len(cmd.Args) > 0 && cmd.Args[0] == "3.10.0" {
			return errors.New("compile failed")
		}
		return nil
	}}
	d.Runner = runner
	d.Packages.Runner = runner

	broken := &envspec.Environment{Name: "py310", Type: envspec.Python, Version: "3.10.0", EnvDir: filepath.Join(t.TempDir(), "py310"), Packages: []string{"requests"}}
	healthy := &envspec.Environment{Name: "py311", Type: envspec.Python, Version: "3.11.4", EnvDir: filepath.Join(t.TempDir(), "py311"), Packages: []string{"requests"}}

	p := NewNativePythons(d, []*envspec.Environment{broken, healthy})
	err := p.Provision(context.Background())
	if err == nil {
		t.Fatal("expected aggregate error")
	}

	// The broken environment's pip install must not run; the healthy
	// environment's whole chain must.
	var pipTargets []string
	for _, cmd := range runner.Commands {
		if filepath.Base(cmd.Path) == "pip" {
			pipTargets = append(pipTargets, cmd.Path)
		}
	}
	if len(pipTargets) != 1 || !strings.Contains(pipTargets[0], "py311") {
		t.Errorf("pip installs = %v, want only py311", pipTargets)
	}
}

func TestNativePythons_JythonInstaller(t *testing.T) {
	t.Parallel()
	d, runner, fetcher := testDeps(t, platform.Linux)

	env := &envspec.Environment{
		Name:    "jy",
		Type:    envspec.Jython,
		Version: "2.7.2",
		EnvDir:  filepath.Join(t.TempDir(), "jy"),
	}
	p := NewNativePythons(d, []*envspec.Environment{env})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(fetcher.URLs) != 1 || !strings.HasSuffix(fetcher.URLs[0], "jython-installer-2.7.2.jar") {
		t.Errorf("fetched %v", fetcher.URLs)
	}
	run := runner.Commands[0]
	if run.Path != "java" {
		t.Errorf("installer host = %q", run.Path)
	}
	wantTail := []string{"-s", "-d", env.EnvDir}
	if !slices.Equal(run.Args[len(run.Args)-3:], wantTail) {
		t.Errorf("args = %v", run.Args)
	}
}

func TestNativePythons_WindowsExeInstall(t *testing.T) {
	t.Parallel()
	d, runner, fetcher := testDeps(t, platform.Windows)

	env := &envspec.Environment{
		Name:    "py311",
		Type:    envspec.Python,
		Version: "3.11.4",
		Is64:    true,
		EnvDir:  filepath.Join(t.TempDir(), "py311"),
	}
	p := NewNativePythons(d, []*envspec.Environment{env})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !strings.HasSuffix(fetcher.URLs[0], "/3.11.4/python-3.11.4-amd64.exe") {
		t.Errorf("installer URL = %q", fetcher.URLs[0])
	}

	install := runner.Commands[0]
	if filepath.Base(install.Path) != "python-3.11.4-amd64.exe" {
		t.Errorf("installer path = %q", install.Path)
	}
	if !slices.Contains(install.Args, "/quiet") || !slices.Contains(install.Args, "TargetDir="+env.EnvDir) {
		t.Errorf("installer args = %v", install.Args)
	}

	// pip is absent after the fake install, so get-pip bootstraps it.
	if fetcher.URLs[1] != getPipURL {
		t.Errorf("expected get-pip fetch, got %v", fetcher.URLs)
	}
	bootstrap := runner.Commands[1]
	if filepath.Base(bootstrap.Path) != "python.exe" {
		t.Errorf("bootstrap interpreter = %q", bootstrap.Path)
	}
}

func TestNativePythons_WindowsMsiInstall(t *testing.T) {
	t.Parallel()
	d, runner, _ := testDeps(t, platform.Windows)

	env := &envspec.Environment{
		Name:    "py27",
		Type:    envspec.Python,
		Version: "2.7.14",
		EnvDir:  filepath.Join(t.TempDir(), "py27"),
	}
	p := NewNativePythons(d, []*envspec.Environment{env})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}

	install := runner.Commands[0]
	if install.Path != "msiexec" {
		t.Errorf("MSI must run through msiexec, got %q", install.Path)
	}
	if install.Args[0] != "/i" || !slices.Contains(install.Args, "TARGETDIR="+env.EnvDir) {
		t.Errorf("msiexec args = %v", install.Args)
	}
}

func TestNativePythons_UnsupportedTypeSkippedWithoutFailing(t *testing.T) {
	t.Parallel()
	d, runner, _ := testDeps(t, platform.Linux)

	// IronPython has no native install on Linux, and PyPy none on Windows.
	// Both are capability gaps: the environment is skipped with a warning
	// and the run still succeeds.
	env := &envspec.Environment{Name: "ipy", Type: envspec.IronPython, Version: "2.7.9", EnvDir: filepath.Join(t.TempDir(), "ipy")}
	p := NewNativePythons(d, []*envspec.Environment{env})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatalf("unsupported type must skip, not fail: %v", err)
	}
	if len(runner.Commands) != 0 {
		t.Errorf("no subprocess may run: %v", runner.Commands)
	}

	wd, runner2, _ := testDeps(t, platform.Windows)
	pypy := &envspec.Environment{Name: "pp", Type: envspec.PyPy, Version: "7.3.12", EnvDir: filepath.Join(t.TempDir(), "pp")}
	if err := NewNativePythons(wd, []*envspec.Environment{pypy}).Provision(context.Background()); err != nil {
		t.Fatalf("pypy on windows must skip, not fail: %v", err)
	}
	if len(runner2.Commands) != 0 {
		t.Errorf("no subprocess may run: %v", runner2.Commands)
	}
}

func TestNativePythons_IdempotentOnExistingDir(t *testing.T) {
	t.Parallel()
	d, runner, fetcher := testDeps(t, platform.Linux)

	env := &envspec.Environment{Name: "py", Type: envspec.Python, Version: "3.11.4", EnvDir: t.TempDir(), Packages: []string{"requests"}}
	p := NewNativePythons(d, []*envspec.Environment{env})
	if err := p.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(runner.Commands) != 0 || len(fetcher.URLs) != 0 {
		t.Errorf("existing envDir must suppress all work")
	}
}
