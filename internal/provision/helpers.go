// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"os"

	"pyforge-cli/internal/envspec"
	"pyforge-cli/internal/execrun"
	"pyforge-cli/internal/layout"
)

// getPipURL is the upstream pip bootstrap script.
const getPipURL = "https://bootstrap.pypa.io/get-pip.py"

// exists reports whether a filesystem path is present. Directory presence is
// the sole idempotency signal for provisioning.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// bootstrapPip installs pip into an environment that lacks it. IronPython
// ships an ensurepip module and needs its frame flags; every other typed
// environment runs the downloaded get-pip.py through its interpreter.
func (d Deps) bootstrapPip(ctx context.Context, env *envspec.Environment) error {
	interpreter, err := layout.Interpreter(env, d.Platform)
	if err != nil {
		return err
	}

	if env.Type == envspec.IronPython {
		return d.Runner.Run(ctx, execrun.Command{
			Path: interpreter,
			Args: []string{"-X:Frames", "-m", "ensurepip"},
		})
	}

	script, err := d.Fetcher.Fetch(ctx, getPipURL, d.ScratchDir)
	if err != nil {
		return err
	}
	return d.Runner.Run(ctx, execrun.Command{Path: interpreter, Args: []string{script}})
}
