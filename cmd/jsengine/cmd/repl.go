package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meko-tech/jsengine/pkg/engine"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive JavaScript REPL",
	Long: `Read JavaScript source a line at a time from stdin, evaluating
each line against one shared Engine (and hence one global object) and
draining the event loop after each, printing the completion value.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	opts, err := engineOptions(cmd)
	if err != nil {
		return fmt.Errorf("loading --config: %w", err)
	}
	e, err := engine.New(opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer e.Close()

	scanner := bufio.NewScanner(os.Stdin)
	line := 0
	fmt.Fprint(os.Stderr, "> ")
	for scanner.Scan() {
		line++
		src := scanner.Text()
		if src == "" {
			fmt.Fprint(os.Stderr, "> ")
			continue
		}
		result, err := e.EvaluateSync(src, fmt.Sprintf("<repl:%d>", line))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Uncaught %s\n", err)
		} else if result != nil {
			fmt.Println(result.String())
		}
		for _, exc := range e.Exceptions() {
			fmt.Fprintf(os.Stderr, "Unhandled %s: %s\n", exc.Kind, exc.Message)
		}
		fmt.Fprint(os.Stderr, "> ")
	}
	fmt.Fprintln(os.Stderr)
	return scanner.Err()
}
