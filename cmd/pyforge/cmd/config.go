// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the pyforge manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration as YAML.

The output is the decoded manifest with defaults applied, so it can be
saved and used as an explicit manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})
}

func showConfig() error {
	manifest, err := loadManifest()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return err
	}

	fmt.Println(TitleStyle.Render("Effective configuration"))
	fmt.Println(SubtitleStyle.Render(manifest.String()))
	fmt.Printf("%s: %s\n", ValueStyle.Render("root"), manifest.Root)
	fmt.Printf("%s: %s\n", ValueStyle.Render("scratch"), manifest.Scratch)
	fmt.Println()

	out, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
