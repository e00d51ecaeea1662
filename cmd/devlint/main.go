// Command devlint is the CLI entrypoint: it wires the dclint, helmlint, kubelint, and optimize
// subcommands (spec §6) onto the internal rule engine and optimizer packages.
package main

import (
	"os"

	"github.com/scoutflo/devlint/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
