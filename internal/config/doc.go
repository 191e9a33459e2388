// SPDX-License-Identifier: MPL-2.0

// Package config loads the declarative YAML manifest and turns it into the
// environment descriptor registry.
package config
