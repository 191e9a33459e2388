// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// Platform is an explicit platform-capability value passed to every component
// that branches on the host operating system. Components never consult
// package-level OS booleans; tests construct arbitrary Platform values to
// exercise cross-platform behavior deterministically.
type Platform struct {
	// OS is the operating system name, one of the runtime.GOOS values
	// (see the constants above).
	OS string
}

// Current returns the Platform of the running process.
func Current() Platform {
	return Platform{OS: runtime.GOOS}
}

// IsWindows reports whether the platform is Windows.
func (p Platform) IsWindows() bool {
	return p.OS == Windows
}

// ExeSuffix returns ".exe" on Windows and "" elsewhere.
func (p Platform) ExeSuffix() string {
	if p.IsWindows() {
		return ".exe"
	}
	return ""
}

// ScriptsDir returns the name of the per-environment scripts directory used
// by CPython and Conda installations: "Scripts" on Windows, "bin" on POSIX.
func (p Platform) ScriptsDir() string {
	if p.IsWindows() {
		return "Scripts"
	}
	return "bin"
}

// CondaOS returns the operating system component of Conda installer
// filenames: "Windows", "MacOSX" or "Linux".
func (p Platform) CondaOS() string {
	switch p.OS {
	case Windows:
		return "Windows"
	case Darwin:
		return "MacOSX"
	default:
		return "Linux"
	}
}

// InstallerExt returns the Conda installer file extension for the platform:
// ".exe" on Windows, ".sh" elsewhere.
func (p Platform) InstallerExt() string {
	if p.IsWindows() {
		return ".exe"
	}
	return ".sh"
}
