package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meko-tech/jsengine/pkg/engine"
)

var (
	parseEval  string
	parseSteps bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a JavaScript file and display its AST",
	Long: `Parse a JavaScript program through the lexer/parser/astbuilder
pipeline and print the resulting typed AST.

With --steps, print every stage instead: the untyped IR the parser
produced, the typed AST astbuilder built from it, the constant-folded
AST, and the AST after async/await CPS desugaring.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&parseSteps, "steps", false, "print every pipeline stage (ir, ast, folded, cps)")
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(parseEval, args)
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

	if !parseSteps {
		prog, err := e.Parse(input, filename)
		if err != nil {
			return err
		}
		fmt.Print(dumpAST(prog))
		return nil
	}

	res, err := e.ParseWithSteps(input, filename, []engine.ParseStep{
		engine.StepIR, engine.StepAST, engine.StepFolded, engine.StepCPS,
	})
	if err != nil {
		return err
	}

	fmt.Println("=== ir ===")
	fmt.Println(fmt.Sprint(res.IR))
	fmt.Println("=== ast ===")
	fmt.Print(dumpAST(res.AST))
	fmt.Println("=== folded ===")
	fmt.Print(dumpAST(res.Folded))
	fmt.Println("=== cps ===")
	fmt.Print(dumpAST(res.CPSApplied))
	return nil
}
