// SPDX-License-Identifier: MPL-2.0

package main

import "pyforge-cli/cmd/pyforge/cmd"

func main() {
	cmd.Execute()
}
