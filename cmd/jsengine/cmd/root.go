package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "jsengine",
	Short: "Embeddable JavaScript execution engine",
	Long: `jsengine is a host binding around the core JavaScript engine:
lexer, parser, untyped IR, typed AST, constant folding, async/await
desugaring, a tree-walking evaluator and its event loop.

This CLI is a thin shell over pkg/engine; everything it does, a host
program embedding the engine can do through that package directly.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("config", "", "YAML file with engine options (max-call-stack-depth, microtask-budget, strict)")
}
