package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meko-tech/jsengine/internal/lexer"
	"github.com/meko-tech/jsengine/pkg/engine"
)

var (
	lexEval  string
	showPos  bool
	showKind bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a JavaScript file or expression",
	Long: `Tokenize a JavaScript program and print the resulting token
stream, one token per line.

Examples:
  # Tokenize a script file
  jsengine lex script.js

  # Tokenize an inline expression
  jsengine lex -e "const x = 42;"

  # Show token kinds and positions
  jsengine lex --show-kind --show-pos script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLexCmd,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token source positions")
	lexCmd.Flags().BoolVar(&showKind, "show-kind", false, "show token kind names")
}

func runLexCmd(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(lexEval, args)
	if err != nil {
		return err
	}

	e, err := engine.New()
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer e.Close()

	for _, tok := range e.Lex(input, filename) {
		printToken(tok)
		if tok.Kind == lexer.EOF {
			break
		}
	}
	return nil
}

func printToken(tok lexer.Token) {
	var out string
	if showKind {
		out = fmt.Sprintf("[%-10v]", tok.Kind)
	}
	if tok.Kind == lexer.EOF {
		out += " EOF"
	} else {
		out += fmt.Sprintf(" %q", tok.Lexeme)
	}
	if showPos {
		out += fmt.Sprintf(" @%d:%d", tok.Source.StartLine, tok.Source.StartCol)
	}
	fmt.Println(out)
}
