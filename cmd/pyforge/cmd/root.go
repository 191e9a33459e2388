// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pyforge.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pyforge-cli/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug output
	verbose bool
	// manifestFile allows specifying a custom manifest path
	manifestFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "pyforge",
		Short: "Provision Python runtime environments",
		Long: TitleStyle.Render("pyforge") + SubtitleStyle.Render(" - Provision Python runtime environments") + `

pyforge reads a declarative manifest and installs the Python-family
runtimes it describes: CPython, Jython, PyPy, IronPython, Miniconda and
Anaconda distributions, conda sub-environments and virtualenvs, plus
literal files and hard links.

Environments are identified by their install directory: an existing
directory is treated as already provisioned and skipped, so repeated
runs only do the remaining work.

` + SubtitleStyle.Render("Examples:") + `
  pyforge provision                 Provision everything in pyforge.yaml
  pyforge provision -m build.yaml   Use an explicit manifest
  pyforge resolve python envs/py311 pip
  pyforge config show               Show the effective configuration
  pyforge doctor                    Explain known provisioning problems`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&manifestFile, "manifest", "m", "",
		"manifest file (default is ./"+config.ManifestFileName+"."+config.ManifestFileExt+")")

	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
}

// newLogger builds the logger shared by all commands. Debug severity is
// only emitted with --verbose.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "pyforge",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// loadManifest reads the manifest honoring the --manifest flag.
func loadManifest() (*config.Manifest, error) {
	return config.Load(manifestFile)
}
