// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyforge-cli/internal/issue"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Explain known provisioning problems",
	Long: `Explain known provisioning problems.

Renders the catalog of recurring issues - unsupported archives,
installer failures, environment types without an install strategy -
with what to try for each.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		for _, entry := range issue.Catalog() {
			rendered, err := entry.Render("dark")
			if err != nil {
				logger.Warn("failed to render issue", "title", entry.Title(), "error", err)
				continue
			}
			fmt.Fprint(os.Stdout, rendered)
		}
		return nil
	},
}
