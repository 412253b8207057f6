// Command tsbridge bridges an LSP editor client to a tsserver subprocess.
package main

import (
	"os"

	"github.com/nodets/tsbridge/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
