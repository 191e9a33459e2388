// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/fetch"
	"pyforge-cli/internal/pkgmgr"
	"pyforge-cli/internal/platform"
	"pyforge-cli/internal/provision"
)

var (
	// rootDir overrides the manifest's root directory for environments.
	rootDir string

	provisionCmd = &cobra.Command{
		Use:   "provision",
		Short: "Provision all environments declared in the manifest",
		Long: `Provision all environments declared in the manifest.

Categories run sequentially in dependency order: native installs, zip
archives and conda distributions first, then conda sub-environments and
virtualenvs, then files and links. An environment whose install
directory already exists is skipped. A failure inside one environment
is logged and its siblings continue; the command exits non-zero when
anything failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd)
		},
	}
)

func init() {
	provisionCmd.Flags().StringVar(&rootDir, "root", "", "override the environments root directory")
}

func runProvision(cmd *cobra.Command) error {
	logger := newLogger()

	manifest, err := loadManifest()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return err
	}
	if rootDir != "" {
		manifest.Root = rootDir
	}

	registry, err := manifest.BuildRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return err
	}

	if len(registry.Environments()) == 0 && len(registry.Files) == 0 && len(registry.Links) == 0 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+"manifest declares nothing to provision")
		return nil
	}

	p := platform.Current()
	runner := &execrun.ExecRunner{}
	if verbose {
		// Stream subprocess output instead of capturing it.
		runner.Stdout = os.Stdout
		runner.Stderr = os.Stderr
	}

	deps := provision.Deps{
		Log:      logger,
		Runner:   runner,
		Fetcher:  &fetch.HTTPFetcher{},
		Platform: p,
		Packages: &pkgmgr.Installer{
			Runner:     runner,
			Platform:   p,
			PipOptions: manifest.PipOptions,
			Log:        logger,
		},
		ScratchDir: manifest.Scratch,
	}

	if err := provision.NewEngine(deps, registry).Run(cmd.Context()); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return err
	}

	fmt.Println(SuccessStyle.Render("✓") + " all environments provisioned")
	return nil
}
