// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"

	"golang.org/x/mod/semver"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/layout"
)

// windowsPythonBaseURL is where python.org hosts the Windows installers.
const windowsPythonBaseURL = "https://www.python.org/ftp/python"

// usesExeInstaller reports whether a CPython version ships an executable
// installer. Python switched from MSI to a standalone .exe with 3.5.0.
func usesExeInstaller(version string) bool {
	return semver.Compare("v"+version, "v3.5.0") >= 0
}

// windowsInstallerFile computes the installer filename for a version and
// architecture. The two installer generations use different naming: the
// executable appends "-amd64", the MSI appends ".amd64".
func windowsInstallerFile(version string, is64 bool) string {
	if usesExeInstaller(version) {
		if is64 {
			return fmt.Sprintf("python-%s-amd64.exe", version)
		}
		return fmt.Sprintf("python-%s.exe", version)
	}
	if is64 {
		return fmt.Sprintf("python-%s.amd64.msi", version)
	}
	return fmt.Sprintf("python-%s.msi", version)
}

// windowsInstallerURL returns the download location of a CPython installer.
func windowsInstallerURL(version string, is64 bool) string {
	return fmt.Sprintf("%s/%s/%s", windowsPythonBaseURL, version, windowsInstallerFile(version, is64))
}

// installWindows provisions a CPython environment with the python.org
// installer, run silently against the environment directory. The installer
// is cached in the scratch directory across runs. Older installers do not
// reliably lay down pip, so it is bootstrapped afterwards when missing.
func (p *NativePythons) installWindows(ctx context.Context, env *envspec.Environment) error {
	installer, err := p.deps.Fetcher.Fetch(ctx, windowsInstallerURL(env.Version, env.Is64), p.deps.ScratchDir)
	if err != nil {
		return err
	}

	var cmd execrun.Command
	if usesExeInstaller(env.Version) {
		cmd = execrun.Command{
			Path: installer,
			Args: []string{"/quiet", "InstallAllUsers=0", "TargetDir=" + env.EnvDir},
		}
	} else {
		cmd = execrun.Command{
			Path: "msiexec",
			Args: []string{"/i", installer, "/qn", "TARGETDIR=" + env.EnvDir},
		}
	}
	if err := p.deps.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("installer failed: %w", err)
	}

	pip, err := layout.ResolveExecutable(env.Type, env.EnvDir, p.deps.Platform, "pip")
	if err != nil {
		return err
	}
	if !exists(pip) {
		if err := p.deps.bootstrapPip(ctx, env); err != nil {
			return fmt.Errorf("failed to bootstrap pip: %w", err)
		}
	}
	return nil
}
