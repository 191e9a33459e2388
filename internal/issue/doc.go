// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context and a curated catalog of
// known provisioning problems with rendered explanations.
package issue
