// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"pyforge-cli/internal/envspec"
)

// BuildRegistry turns the decoded manifest into the immutable descriptor
// registry. Declarations with a url become zip-based environments, ones with
// a version become native installs. Source references are resolved by name;
// a dangling reference is an error.
func (m *Manifest) BuildRegistry() (*envspec.Registry, error) {
	reg := &envspec.Registry{}
	byName := make(map[string]*envspec.Environment)

	for _, decl := range m.Environments {
		var typ envspec.EnvironmentType
		if err := typ.UnmarshalText([]byte(decl.Type)); err != nil {
			return nil, fmt.Errorf("environment %q: %w", decl.Name, err)
		}
		env := &envspec.Environment{
			Name:     decl.Name,
			Type:     typ,
			Version:  decl.Version,
			EnvDir:   envDir(m.Root, decl.Dir, decl.Name),
			Packages: decl.Packages,
			Is64:     decl.Is64,
			URL:      decl.URL,
		}
		switch {
		case decl.URL != "":
			reg.Zips = append(reg.Zips, env)
		case decl.Version != "":
			if typ == "" {
				return nil, fmt.Errorf("environment %q: native installs need a type", decl.Name)
			}
			reg.Pythons = append(reg.Pythons, env)
		default:
			return nil, fmt.Errorf("environment %q: need either a version or a url", decl.Name)
		}
		byName[env.Name] = env
	}

	for _, decl := range m.Condas {
		env := &envspec.CondaEnvironment{
			Environment: envspec.Environment{
				Name:     decl.Name,
				Type:     envspec.Conda,
				Version:  decl.Version,
				EnvDir:   envDir(m.Root, decl.Dir, decl.Name),
				Packages: decl.Packages,
				Is64:     decl.Is64,
			},
			CondaPackages: decl.CondaPackages,
		}
		reg.Condas = append(reg.Condas, env)
		byName[env.Name] = &env.Environment
	}

	for _, decl := range m.CondaEnvs {
		src, ok := byName[decl.Source]
		if !ok || src.Type != envspec.Conda {
			return nil, fmt.Errorf("conda environment %q: source %q is not a conda distribution", decl.Name, decl.Source)
		}
		env := &envspec.CondaEnvironment{
			Environment: envspec.Environment{
				Name:      decl.Name,
				Type:      envspec.Conda,
				Version:   decl.Version,
				EnvDir:    envDir(m.Root, decl.Dir, decl.Name),
				Packages:  decl.Packages,
				SourceEnv: src,
			},
			CondaPackages: decl.CondaPackages,
		}
		reg.CondaEnvs = append(reg.CondaEnvs, env)
		byName[env.Name] = &env.Environment
	}

	for _, decl := range m.VirtualEnvs {
		src, ok := byName[decl.Source]
		if !ok {
			return nil, fmt.Errorf("virtualenv %q: unknown source environment %q", decl.Name, decl.Source)
		}
		env := &envspec.Environment{
			Name:      decl.Name,
			Type:      envspec.VirtualEnv,
			EnvDir:    envDir(m.Root, decl.Dir, decl.Name),
			Packages:  decl.Packages,
			SourceEnv: src,
		}
		reg.VirtualEnvs = append(reg.VirtualEnvs, env)
		byName[env.Name] = env
	}

	for _, decl := range m.Files {
		reg.Files = append(reg.Files, envspec.FileSpec{File: decl.File, Content: decl.Content})
	}
	for _, decl := range m.Links {
		reg.Links = append(reg.Links, envspec.LinkSpec{Link: decl.Link, Source: decl.Source})
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}
