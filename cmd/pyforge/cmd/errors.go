// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"pyforge-cli/internal/issue"
)

// formatErrorForDisplay formats an error for user display, using the
// actionable format when available.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
