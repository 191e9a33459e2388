// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"fmt"

	"pyforge-cli/internal/platform"
)

// EnvironmentType identifies the install strategy and executable layout of an
// environment. It is a closed set: dispatch sites switch exhaustively over
// these values so a new type is a compile-time-visible gap.
type EnvironmentType string

// The supported environment types.
const (
	Python     EnvironmentType = "python"
	Jython     EnvironmentType = "jython"
	PyPy       EnvironmentType = "pypy"
	IronPython EnvironmentType = "ironpython"
	Conda      EnvironmentType = "conda"
	VirtualEnv EnvironmentType = "virtualenv"
)

// environmentTypes lists all valid types in declaration order.
var environmentTypes = []EnvironmentType{Python, Jython, PyPy, IronPython, Conda, VirtualEnv}

// IsValid reports whether t is one of the supported environment types.
func (t EnvironmentType) IsValid() bool {
	for _, known := range environmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the lowercase name used in manifests and logs.
func (t EnvironmentType) String() string {
	return string(t)
}

// UnmarshalText implements encoding.TextUnmarshaler for manifest decoding.
// An empty value is accepted: zip-based environments may omit the type.
func (t *EnvironmentType) UnmarshalText(text []byte) error {
	v := EnvironmentType(text)
	if v != "" && !v.IsValid() {
		return fmt.Errorf("unknown environment type %q", string(text))
	}
	*t = v
	return nil
}

type (
	// Environment describes one desired Python-family runtime environment.
	// Descriptors are constructed once from the manifest before provisioning
	// starts and are immutable thereafter; the only provisioning side effect
	// is on the filesystem (EnvDir), never on the descriptor itself.
	Environment struct {
		// Name uniquely identifies the environment within its registry.
		// It is used for task naming and logging.
		Name string

		// Type selects the install strategy. Empty is allowed for zip-based
		// environments that are plain file trees without a known layout.
		Type EnvironmentType

		// Version is the installer/runtime version. Empty for zip and
		// virtualenv environments.
		Version string

		// EnvDir is the target install directory. Its existence is the sole
		// idempotency signal: a provisioner never re-runs once EnvDir exists.
		EnvDir string

		// Packages are pip package specifiers installed after provisioning,
		// in order.
		Packages []string

		// Is64 selects the 64-bit installer/executable variant.
		Is64 bool

		// URL is the source archive location for zip-based provisioning.
		URL string

		// SourceEnv references the environment a virtualenv or Conda
		// sub-environment is derived from. The source must be provisioned
		// (its EnvDir must exist) before the dependent environment runs.
		SourceEnv *Environment
	}

	// CondaEnvironment is an Environment with an additional package list
	// installed through conda rather than pip.
	CondaEnvironment struct {
		Environment

		// CondaPackages are Conda-channel package specifiers, in order.
		CondaPackages []string
	}

	// FileSpec materializes literal content at a path.
	FileSpec struct {
		File    string
		Content string
	}

	// LinkSpec creates a hard link at Link pointing to Source.
	LinkSpec struct {
		Link   string
		Source string
	}

	// Registry is the ordered collection of all descriptors, grouped by
	// provisioning category. It is populated from the manifest once, before
	// any provisioning runs.
	Registry struct {
		// Pythons are natively installed interpreters (python-build on
		// POSIX, the python.org installers on Windows, the Jython installer
		// jar).
		Pythons []*Environment

		// Zips are environments extracted from a source archive.
		Zips []*Environment

		// VirtualEnvs are virtualenvs derived from another environment.
		VirtualEnvs []*Environment

		// Condas are Miniconda/Anaconda distribution installs.
		Condas []*CondaEnvironment

		// CondaEnvs are sub-environments created inside a distribution.
		CondaEnvs []*CondaEnvironment

		// Files and Links are plain filesystem materializations,
		// independent of environment provisioning.
		Files []FileSpec
		Links []LinkSpec
	}
)

// Environments returns every environment descriptor in the registry, in
// category order.
func (r *Registry) Environments() []*Environment {
	var all []*Environment
	all = append(all, r.Pythons...)
	all = append(all, r.Zips...)
	for _, c := range r.Condas {
		all = append(all, &c.Environment)
	}
	for _, c := range r.CondaEnvs {
		all = append(all, &c.Environment)
	}
	all = append(all, r.VirtualEnvs...)
	return all
}

// Validate checks registry-wide invariants: every environment name is unique
// (duplicate names would produce duplicate task identifiers) and every
// derived environment has a source.
func (r *Registry) Validate() error {
	seen := make(map[string]bool)
	for _, env := range r.Environments() {
		if env.Name == "" {
			return fmt.Errorf("environment with empty name (envDir %s)", env.EnvDir)
		}
		if seen[env.Name] {
			return fmt.Errorf("duplicate environment name %q", env.Name)
		}
		if platform.IsWindowsReservedName(env.Name) {
			return fmt.Errorf("environment name %q is reserved on Windows", env.Name)
		}
		seen[env.Name] = true
	}
	for _, env := range r.VirtualEnvs {
		if env.SourceEnv == nil {
			return fmt.Errorf("virtualenv %q has no source environment", env.Name)
		}
	}
	for _, env := range r.CondaEnvs {
		if env.SourceEnv == nil {
			return fmt.Errorf("conda environment %q has no source distribution", env.Name)
		}
	}
	return nil
}
