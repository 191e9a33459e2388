// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/layout"
	"pyforge-cli/internal/platform"
)

type (
	// UnsupportedArchiveError reports a zip-based environment whose source
	// URL does not point at a zip archive. It is raised before any download
	// happens.
	UnsupportedArchiveError struct {
		URL string
	}

	// UnsupportedEnvironmentTypeError reports an environment whose type has
	// no provisioning strategy on the current platform.
	UnsupportedEnvironmentTypeError struct {
		Type     envspec.EnvironmentType
		Platform platform.Platform
	}
)

func (e *UnsupportedArchiveError) Error() string {
	return fmt.Sprintf("unsupported archive %q: only .zip sources can be provisioned", e.URL)
}

func (e *UnsupportedEnvironmentTypeError) Error() string {
	return fmt.Sprintf("no provisioning strategy for %s environments on %s", e.Type, e.Platform.OS)
}

// missingCapability reports whether err means the host or the environment
// type cannot support the requested operation at all. Such environments are
// skipped with a warning rather than counted as failures, so a manifest
// shared across platforms still provisions everything the host can do.
func missingCapability(err error) bool {
	var typeErr *UnsupportedEnvironmentTypeError
	var execErr *layout.UnsupportedExecutableError
	return errors.As(err, &typeErr) || errors.As(err, &execErr)
}
