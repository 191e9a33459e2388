// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// The central type is Platform, an injected capability value that replaces
// process-wide OS detection. All platform-dependent path and installer
// decisions flow through it so they can be tested for every OS on any host.
package platform
