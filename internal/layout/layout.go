// SPDX-License-Identifier: MPL-2.0

// Package layout maps logical executable names to concrete paths inside a
// provisioned environment directory. Resolution is pure: it never touches
// the filesystem, so the same inputs always produce the same path.
package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/platform"
)

// UnsupportedExecutableError reports that an (environment type, executable
// name) pair has no defined path mapping.
type UnsupportedExecutableError struct {
	Type envspec.EnvironmentType
	Name string
}

func (e *UnsupportedExecutableError) Error() string {
	return fmt.Sprintf("no executable mapping for %q in a %s environment", e.Name, e.Type)
}

// ResolveExecutable computes the on-disk path of a named executable inside
// envDir for the given environment type and host platform.
//
// Layout rules:
//   - python/conda/virtualenv environments keep pip, virtualenv and conda in
//     the platform scripts directory (Scripts on Windows, bin on POSIX) and
//     python* interpreters at the top level, with an .exe suffix on Windows.
//   - jython and pypy keep every executable under a POSIX-style bin/
//     directory, with an .exe suffix on Windows.
//   - ironpython keeps ipy.exe/ipy64.exe at the top level and other tools
//     under Scripts.
func ResolveExecutable(t envspec.EnvironmentType, envDir string, p platform.Platform, name string) (string, error) {
	switch t {
	case envspec.Python, envspec.Conda, envspec.VirtualEnv:
		switch {
		case name == "pip" || name == "virtualenv" || name == "conda":
			return filepath.Join(envDir, p.ScriptsDir(), name+p.ExeSuffix()), nil
		case strings.HasPrefix(name, "python"):
			return filepath.Join(envDir, name+p.ExeSuffix()), nil
		}
	case envspec.Jython, envspec.PyPy:
		return filepath.Join(envDir, "bin", name+p.ExeSuffix()), nil
	case envspec.IronPython:
		switch {
		// The interpreter itself always carries the .exe suffix:
		// IronPython ships Windows binaries only.
		case name == "ipy" || name == "ipy64":
			return filepath.Join(envDir, name+".exe"), nil
		case name == "pip" || name == "virtualenv":
			return filepath.Join(envDir, "Scripts", name+p.ExeSuffix()), nil
		}
	}
	return "", &UnsupportedExecutableError{Type: t, Name: name}
}

// Interpreter returns the path of the environment's Python interpreter.
// For IronPython the architecture flag selects ipy.exe or ipy64.exe.
func Interpreter(env *envspec.Environment, p platform.Platform) (string, error) {
	if env.Type == envspec.IronPython {
		name := "ipy"
		if env.Is64 {
			name = "ipy64"
		}
		return ResolveExecutable(env.Type, env.EnvDir, p, name)
	}
	return ResolveExecutable(env.Type, env.EnvDir, p, "python")
}
