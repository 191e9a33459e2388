// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/layout"
	"pyforge-cli/internal/platform"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <type> <envdir> <executable>",
	Short: "Print the path of an executable inside an environment",
	Long: `Print the path of an executable inside an environment.

The path depends only on the environment type, its directory and the
current platform; nothing is checked on disk. Useful for wiring
provisioned interpreters into other tooling.

Examples:
  pyforge resolve python envs/py311 pip
  pyforge resolve jython envs/jy27 python
  pyforge resolve ironpython envs/ipy ipy64`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var typ envspec.EnvironmentType
		if err := typ.UnmarshalText([]byte(args[0])); err != nil {
			return err
		}

		path, err := layout.ResolveExecutable(typ, args[1], platform.Current(), args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
			return err
		}
		fmt.Println(path)
		return nil
	},
}
