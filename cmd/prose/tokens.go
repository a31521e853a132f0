package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/prose/pkg/cli"
	"mercator-hq/prose/pkg/config"
	"mercator-hq/prose/pkg/prose/lexer"
)

var tokensFlags struct {
	format   string
	comments bool
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Dump the token stream of a source file",
	Long: `Tokenize a Prose source file and print the resulting token stream,
one token per line with its source span. Useful for debugging
indentation problems.

Examples:
  # Dump tokens
  prose tokens workflow.prose

  # Include comment tokens
  prose tokens workflow.prose --comments

  # JSON output
  prose tokens workflow.prose --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&tokensFlags.format, "format", "text", "output format: text, json")
	tokensCmd.Flags().BoolVar(&tokensFlags.comments, "comments", false, "include comment tokens")
}

// commentSetting resolves whether comment tokens are emitted: the
// --comments flag when given on the command line, the config value
// otherwise.
func commentSetting(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("comments") {
		return tokensFlags.comments
	}
	return cfg.Lexer.IncludeComments
}

func runTokens(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := cli.ParseFormat(tokensFlags.format)
	if err != nil {
		return err
	}

	source, err := readSource(cfg, args[0])
	if err != nil {
		return err
	}

	result := lexer.Tokenize(source,
		lexer.WithTabWidth(cfg.Lexer.TabWidth),
		lexer.WithComments(commentSetting(cmd, cfg)),
	)

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, result.Tokens)
	}

	for _, tok := range result.Tokens {
		fmt.Printf("%-14s %s\n", tok.Span, tok)
	}

	for _, d := range result.Diagnostics.Errors() {
		fmt.Fprintf(os.Stderr, "%s: error: %s", args[0], d.Format(source))
	}
	for _, d := range result.Diagnostics.Warnings() {
		fmt.Fprintf(os.Stderr, "%s: warning: %s", args[0], d.Format(source))
	}
	if result.Diagnostics.HasErrors() {
		return errInvalid
	}
	return nil
}
