// SPDX-License-Identifier: MPL-2.0

package issue

import "github.com/charmbracelet/glamour"

// Id identifies a known issue in the catalog.
type Id int

// The known issues.
const (
	ManifestNotFoundId Id = iota + 1
	UnsupportedArchiveId
	CorruptArchiveId
	UnsupportedEnvironmentTypeId
	InstallerFailedId
	IronPythonVirtualenvId
)

// Issue is a curated explanation of a recurring provisioning problem,
// written in Markdown and rendered for the terminal on demand.
type Issue struct {
	id    Id
	title string
	mdMsg string
}

// Id returns the issue identifier.
func (i *Issue) Id() Id { return i.id }

// Title returns the one-line summary.
func (i *Issue) Title() string { return i.title }

// Render formats the explanation with the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.mdMsg, stylePath)
}

var render = glamour.Render

var catalog = []*Issue{
	{
		id:    ManifestNotFoundId,
		title: "No manifest found",
		mdMsg: `
# No manifest found

pyforge looks for a ` + "`pyforge.yaml`" + ` manifest in the current directory.

## Things you can try
- Run from the directory that contains the manifest
- Pass an explicit path:
~~~
$ pyforge provision --manifest path/to/pyforge.yaml
~~~`,
	},
	{
		id:    UnsupportedArchiveId,
		title: "Source URL is not a zip archive",
		mdMsg: `
# Source URL is not a zip archive

Archive-based environments can only be provisioned from ` + "`.zip`" + ` sources.
Nothing is downloaded when the URL has another extension.

## Things you can try
- Point the environment's url at a zip release of the runtime
- For runtimes distributed as tarballs, install them natively instead`,
	},
	{
		id:    CorruptArchiveId,
		title: "Archive contents are not an environment tree",
		mdMsg: `
# Archive contents are not an environment tree

The downloaded archive held a single top-level entry that is not a
directory, so there is no environment tree to unwrap.

## Things you can try
- Verify the url points at a runtime release, not a single file
- Download the archive manually and inspect its layout`,
	},
	{
		id:    UnsupportedEnvironmentTypeId,
		title: "No install strategy for this environment type",
		mdMsg: `
# No install strategy for this environment type

Some environment types cannot be installed natively on every platform:
PyPy has no Windows installer flow and IronPython has no native POSIX
install.

## Things you can try
- Provision the runtime from a zip release via the environment's url
- Move the environment to a platform that supports it`,
	},
	{
		id:    InstallerFailedId,
		title: "An external installer exited with an error",
		mdMsg: `
# An external installer exited with an error

pyforge drives third-party installers (python-build, the python.org
installers, conda). When one exits non-zero, that environment is
abandoned and its siblings continue.

## Things you can try
- Re-run with ` + "`--verbose`" + ` to see the captured installer output
- Delete the partially-created environment directory before retrying`,
	},
	{
		id:    IronPythonVirtualenvId,
		title: "IronPython environments cannot host virtualenvs",
		mdMsg: `
# IronPython environments cannot host virtualenvs

The virtualenv tool does not support IronPython as a host interpreter.
A virtualenv whose source is an IronPython environment is skipped with a
warning rather than failing the run.

## Things you can try
- Derive the virtualenv from a CPython environment instead`,
	},
}

// Catalog returns every known issue in a fixed order.
func Catalog() []*Issue {
	out := make([]*Issue, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the issue with the given id, or nil.
func Lookup(id Id) *Issue {
	for _, i := range catalog {
		if i.id == id {
			return i
		}
	}
	return nil
}
