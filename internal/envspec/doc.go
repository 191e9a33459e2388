// SPDX-License-Identifier: MPL-2.0

// Package envspec defines the declarative data model for environment
// provisioning: environment descriptors, file and link specs, and the
// registry that groups them by provisioning category.
package envspec
