// SPDX-License-Identifier: MPL-2.0

// Package provision turns a populated environment registry into ordered
// external command invocations.
//
// Each provisioning category (native interpreters, zip archives, Conda
// distributions, Conda sub-environments, virtualenvs, files, links)
// implements the Provisioner interface. The Engine topologically orders the
// categories by their declared dependencies and runs them one at a time:
//
//	engine := provision.NewEngine(deps, registry)
//	err := engine.Run(ctx)
//
// Failures are isolated per environment: an installer that exits non-zero
// aborts only that environment's remaining steps, siblings keep going, and
// the engine reports an aggregate error at the end. An environment whose
// target directory already exists is skipped entirely.
package provision
