package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meko-tech/jsengine/pkg/engine"
)

var (
	evalExpr string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a JavaScript file or expression",
	Long: `Parse, evaluate, and drain the event loop for a JavaScript program,
then print the completion value.

Examples:
  # Run a script file
  jsengine run script.js

  # Evaluate an inline expression
  jsengine run -e "1 + 2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
}

func runScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	opts, err := engineOptions(cmd)
	if err != nil {
		return fmt.Errorf("loading --config: %w", err)
	}
	e, err := engine.New(opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer e.Close()

	result, err := e.EvaluateSync(input, filename)
	if err != nil {
		return fmt.Errorf("%s", err)
	}

	for _, exc := range e.Exceptions() {
		fmt.Fprintf(os.Stderr, "Unhandled %s: %s\n", exc.Kind, exc.Message)
	}

	if result != nil {
		fmt.Println(result.String())
	}
	return nil
}

// readSource resolves a command's input: the -e flag if given, otherwise
// the single positional file argument.
func readSource(inline string, args []string) (input, filename string, err error) {
	if inline != "" {
		return inline, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
}
