// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/fetch"
	"pyforge-cli/internal/pkgmgr"
	"pyforge-cli/internal/platform"
)

type (
	// Deps bundles the collaborators shared by every provisioning category.
	Deps struct {
		Log      *log.Logger
		Runner   execrun.Runner
		Fetcher  fetch.Fetcher
		Platform platform.Platform
		Packages *pkgmgr.Installer

		// ScratchDir holds downloaded installers and temporary extraction
		// trees. Sequential execution keeps filenames from colliding.
		ScratchDir string
	}

	// Provisioner is one provisioning category. Provision runs every
	// descriptor in the category to completion; a failure inside one
	// environment stops only that environment, and the returned error
	// aggregates what failed.
	Provisioner interface {
		// Name identifies the category for ordering and logging.
		Name() string
		// Dependencies lists the category names that must complete first.
		Dependencies() []string
		// Empty reports whether the category has nothing to do, letting the
		// engine short-circuit it.
		Empty() bool
		Provision(ctx context.Context) error
	}

	// Engine runs all categories sequentially in dependency order.
	Engine struct {
		log   *log.Logger
		tasks []Provisioner
	}

	// CycleError indicates that category dependency declarations form a
	// cycle, which makes ordering impossible.
	CycleError struct {
		Categories []string
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("category dependency cycle: %s", strings.Join(e.Categories, " -> "))
}

// NewEngine builds the engine for a populated registry. Categories are
// declared in provisioning order; their explicit dependencies encode the real
// constraints (derived environments after their possible sources).
func NewEngine(d Deps, reg *envspec.Registry) *Engine {
	return &Engine{
		log: d.Log,
		tasks: []Provisioner{
			NewNativePythons(d, reg.Pythons),
			NewZipArchives(d, reg.Zips),
			NewCondaDistributions(d, reg.Condas),
			NewCondaSubEnvs(d, reg.CondaEnvs),
			NewVirtualEnvs(d, reg.VirtualEnvs),
			NewFiles(d, reg.Files),
			NewLinks(d, reg.Links),
		},
	}
}

// Run provisions every non-empty category in topological order. A category
// that reports an error does not stop its siblings; Run returns an aggregate
// error naming the failed categories, or nil when everything succeeded.
func (e *Engine) Run(ctx context.Context) error {
	order, err := e.order()
	if err != nil {
		return err
	}

	byName := make(map[string]Provisioner, len(e.tasks))
	for _, t := range e.tasks {
		byName[t.Name()] = t
	}

	var failed []string
	for _, name := range order {
		task := byName[name]
		if task.Empty() {
			e.log.Debug("nothing to provision", "category", name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("provisioning canceled: %w", err)
		}
		e.log.Info("provisioning", "category", name)
		if err := task.Provision(ctx); err != nil {
			e.log.Error("category finished with errors", "category", name, "error", err)
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("provisioning failed for: %s", strings.Join(failed, ", "))
	}
	return nil
}

// order returns the category execution order using Kahn's algorithm over the
// declared dependencies. Categories at the same level keep their declaration
// order, so runs are deterministic.
func (e *Engine) order() ([]string, error) {
	names := make([]string, 0, len(e.tasks))
	inDegree := make(map[string]int, len(e.tasks))
	dependents := make(map[string][]string, len(e.tasks))

	known := make(map[string]bool, len(e.tasks))
	for _, t := range e.tasks {
		names = append(names, t.Name())
		known[t.Name()] = true
	}
	for _, t := range e.tasks {
		for _, dep := range t.Dependencies() {
			// A dependency on a category that was not registered is a
			// programming error; ignoring it would silently reorder tasks.
			if !known[dep] {
				return nil, fmt.Errorf("category %s depends on unknown category %s", t.Name(), dep)
			}
			dependents[dep] = append(dependents[dep], t.Name())
			inDegree[t.Name()]++
		}
	}

	var queue, order []string
	for _, name := range names {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, next := range dependents[name] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(names) {
		var stuck []string
		for _, name := range names {
			if inDegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		return nil, &CycleError{Categories: stuck}
	}
	return order, nil
}
