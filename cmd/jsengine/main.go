// Command jsengine is a thin host shell around pkg/engine: it is
// explicitly not the embedding API itself, just one binding onto it.
package main

import (
	"fmt"
	"os"

	"github.com/meko-tech/jsengine/cmd/jsengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
