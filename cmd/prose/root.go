package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/prose/pkg/cli"
	"mercator-hq/prose/pkg/config"
	"mercator-hq/prose/pkg/prose"
	"mercator-hq/prose/pkg/prose/lexer"
	"mercator-hq/prose/pkg/prose/parser"
	"mercator-hq/prose/pkg/prose/validator"
	"mercator-hq/prose/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

// errInvalid signals that the input failed its check. The report has
// already been printed, so Execute only maps it to an exit code.
var errInvalid = errors.New("check failed")

var rootCmd = &cobra.Command{
	Use:   "prose",
	Short: "Prose - front-end toolchain for the Prose workflow language",
	Long: `Prose checks and canonicalizes programs written in the Prose workflow
language, an indentation-sensitive scripting language for multi-agent AI
workflows.

The toolchain runs three stages over each source file:
  - Lexing: indentation-aware tokenization
  - Parsing: recursive-descent parse with error recovery
  - Validation: scoping, references, and structural rules

Valid programs can additionally be compiled to a canonical form with
normalized indentation and comments stripped.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and maps errors to exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errInvalid):
		return cli.ExitInvalid
	default:
		var cmdErr *cli.CommandError
		if errors.As(err, &cmdErr) {
			return cli.ExitInternal
		}
		return cli.ExitUsage
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultFileName, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the config file named by --config, applies environment
// overrides, and validates the result. A missing file yields defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewCommandError("config", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewCommandError("config", err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.New(&cfg.Logging, os.Stderr)
	if err != nil {
		return nil, cli.NewCommandError("config", err)
	}
	slog.SetDefault(logger)

	return cfg, nil
}

// checkOptions translates config settings into front-end options.
func checkOptions(cfg *config.Config) []prose.Option {
	return []prose.Option{
		prose.WithParserOptions(
			parser.WithMaxDepth(cfg.Parser.MaxDepth),
			parser.WithLexerOptions(
				lexer.WithTabWidth(cfg.Lexer.TabWidth),
				lexer.WithComments(cfg.Lexer.IncludeComments),
			),
		),
		prose.WithValidatorOptions(
			validator.WithMaxPromptLength(cfg.Validator.MaxPromptLength),
		),
	}
}

// readSource reads a source file, honoring the configured size cap.
func readSource(cfg *config.Config, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", cli.NewCommandError("read", err)
	}
	if cfg.Parser.MaxFileSize > 0 && info.Size() > cfg.Parser.MaxFileSize {
		return "", cli.NewCommandError("read",
			fmt.Errorf("%s is %d bytes, exceeding the %d byte limit", path, info.Size(), cfg.Parser.MaxFileSize))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", cli.NewCommandError("read", err)
	}
	return string(data), nil
}
