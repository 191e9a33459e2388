// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"pyforge-cli/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "pyforge"
	// ManifestFileName is the manifest name without extension.
	ManifestFileName = "pyforge"
	// ManifestFileExt is the manifest extension.
	ManifestFileExt = "yaml"
)

type (
	// Manifest is the decoded declarative configuration: provisioning
	// settings plus the environment, file and link declarations.
	Manifest struct {
		// Root is the directory environments are installed under when a
		// declaration has no explicit dir.
		Root string `mapstructure:"root" yaml:"root"`

		// Scratch is the shared build directory for downloaded installers
		// and temporary extraction trees.
		Scratch string `mapstructure:"scratch" yaml:"scratch"`

		// PipOptions are appended to every pip install invocation.
		PipOptions []string `mapstructure:"pip_options" yaml:"pip_options,omitempty"`

		Environments []EnvironmentDecl `mapstructure:"environments" yaml:"environments,omitempty"`
		VirtualEnvs  []VirtualEnvDecl  `mapstructure:"virtualenvs" yaml:"virtualenvs,omitempty"`
		Condas       []CondaDecl       `mapstructure:"condas" yaml:"condas,omitempty"`
		CondaEnvs    []CondaEnvDecl    `mapstructure:"conda_envs" yaml:"conda_envs,omitempty"`
		Files        []FileDecl        `mapstructure:"files" yaml:"files,omitempty"`
		Links        []LinkDecl        `mapstructure:"links" yaml:"links,omitempty"`
	}

	// EnvironmentDecl declares a natively installed or zip-based
	// environment. A declaration with a url provisions from the archive;
	// one with a version provisions natively.
	EnvironmentDecl struct {
		Name     string   `mapstructure:"name" yaml:"name"`
		Type     string   `mapstructure:"type" yaml:"type,omitempty"`
		Version  string   `mapstructure:"version" yaml:"version,omitempty"`
		Dir      string   `mapstructure:"dir" yaml:"dir,omitempty"`
		URL      string   `mapstructure:"url" yaml:"url,omitempty"`
		Is64     bool     `mapstructure:"is64" yaml:"is64,omitempty"`
		Packages []string `mapstructure:"packages" yaml:"packages,omitempty"`
	}

	// VirtualEnvDecl declares a virtualenv derived from another
	// environment.
	VirtualEnvDecl struct {
		Name     string   `mapstructure:"name" yaml:"name"`
		Source   string   `mapstructure:"source" yaml:"source"`
		Dir      string   `mapstructure:"dir" yaml:"dir,omitempty"`
		Packages []string `mapstructure:"packages" yaml:"packages,omitempty"`
	}

	// CondaDecl declares a Miniconda/Anaconda distribution install.
	CondaDecl struct {
		Name          string   `mapstructure:"name" yaml:"name"`
		Version       string   `mapstructure:"version" yaml:"version"`
		Dir           string   `mapstructure:"dir" yaml:"dir,omitempty"`
		Is64          bool     `mapstructure:"is64" yaml:"is64,omitempty"`
		Packages      []string `mapstructure:"packages" yaml:"packages,omitempty"`
		CondaPackages []string `mapstructure:"conda_packages" yaml:"conda_packages,omitempty"`
	}

	// CondaEnvDecl declares a sub-environment created inside a
	// distribution.
	CondaEnvDecl struct {
		Name          string   `mapstructure:"name" yaml:"name"`
		Source        string   `mapstructure:"source" yaml:"source"`
		Version       string   `mapstructure:"version" yaml:"version"`
		Dir           string   `mapstructure:"dir" yaml:"dir,omitempty"`
		Packages      []string `mapstructure:"packages" yaml:"packages,omitempty"`
		CondaPackages []string `mapstructure:"conda_packages" yaml:"conda_packages,omitempty"`
	}

	// FileDecl declares literal file content to materialize.
	FileDecl struct {
		File    string `mapstructure:"file" yaml:"file"`
		Content string `mapstructure:"content" yaml:"content"`
	}

	// LinkDecl declares a hard link to materialize.
	LinkDecl struct {
		Link   string `mapstructure:"link" yaml:"link"`
		Source string `mapstructure:"source" yaml:"source"`
	}
)

// DefaultManifest returns the settings used when the manifest omits them.
func DefaultManifest() *Manifest {
	return &Manifest{
		Root:    filepath.Join(".pyforge", "envs"),
		Scratch: filepath.Join(".pyforge", "build"),
	}
}

// Load reads the manifest. An explicit path is used exclusively; otherwise
// the manifest is searched for in the current directory. Settings can be
// overridden through PYFORGE_* environment variables.
func Load(path string) (*Manifest, error) {
	v := viper.New()

	defaults := DefaultManifest()
	v.SetDefault("root", defaults.Root)
	v.SetDefault("scratch", defaults.Scratch)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ManifestFileName)
		v.SetConfigType(ManifestFileExt)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, issue.Wrap(err, "load manifest", v.ConfigFileUsed(),
			"Run from the directory containing "+ManifestFileName+"."+ManifestFileExt,
			"Pass an explicit path with --manifest")
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, issue.Wrap(err, "parse manifest", v.ConfigFileUsed(),
			"Check that the values match the manifest schema")
	}
	return &m, nil
}

// envDir returns the install directory for a declaration: the explicit dir
// when present, otherwise root/name.
func envDir(root, dir, name string) string {
	if dir != "" {
		return dir
	}
	return filepath.Join(root, name)
}

func (m *Manifest) String() string {
	return fmt.Sprintf("manifest: %d environments, %d virtualenvs, %d condas, %d conda envs, %d files, %d links",
		len(m.Environments), len(m.VirtualEnvs), len(m.Condas), len(m.CondaEnvs), len(m.Files), len(m.Links))
}
