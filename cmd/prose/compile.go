package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/prose/pkg/cli"
	"mercator-hq/prose/pkg/prose"
)

var compileFlags struct {
	output    string
	sourceMap bool
}

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Emit the canonical form of a valid program",
	Long: `Compile a Prose source file to its canonical form.

The canonical form uses four-space indentation, strips comments, and
normalizes spacing. Compiling a canonical program again reproduces it
byte for byte. Invalid programs are not compiled; their diagnostics are
printed instead.

Examples:
  # Print canonical form to stdout
  prose compile workflow.prose

  # Write to a file
  prose compile workflow.prose -o workflow.canonical.prose

  # Also print the generated-to-source line mapping
  prose compile workflow.prose --source-map`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileFlags.output, "output", "o", "", "write canonical form to file instead of stdout")
	compileCmd.Flags().BoolVar(&compileFlags.sourceMap, "source-map", false, "print the generated-to-source line mapping")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file := args[0]
	source, err := readSource(cfg, file)
	if err != nil {
		return err
	}

	result, compiled := prose.ParseAndValidate(source, checkOptions(cfg)...)
	if compiled == nil {
		report := cli.NewReport(file, result)
		if err := report.WriteText(os.Stderr, source); err != nil {
			return err
		}
		return errInvalid
	}

	if compileFlags.output != "" {
		if err := os.WriteFile(compileFlags.output, []byte(compiled.Code), 0o644); err != nil {
			return cli.NewCommandError("compile", err)
		}
	} else {
		fmt.Print(compiled.Code)
	}

	if compileFlags.sourceMap {
		lines := strings.Count(compiled.Code, "\n") + 1
		for generated := 1; generated <= lines; generated++ {
			if src := compiled.SourceMap.SourceLine(generated); src > 0 {
				fmt.Fprintf(os.Stderr, "%d -> %d\n", generated, src)
			}
		}
	}

	return nil
}
