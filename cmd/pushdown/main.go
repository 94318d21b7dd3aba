// Command pushdown compiles graph traversals into backend queries and
// runs them against a SQLite graph store.
package main

import (
	"os"

	"github.com/roach88/pushdown/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
