package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/prose/pkg/cli"
	"mercator-hq/prose/pkg/history"
	"mercator-hq/prose/pkg/prose"
)

var checkFlags struct {
	format string
	strict bool
	record bool
}

var checkCmd = &cobra.Command{
	Use:   "check <file|dir> [...]",
	Short: "Check Prose source files",
	Long: `Check Prose source files for lexical, syntactic, and semantic problems.

Each file is tokenized, parsed, and validated. Errors make the file
invalid; warnings are advisory unless --strict is given.

Examples:
  # Check a single file
  prose check workflow.prose

  # Check every .prose file under a directory
  prose check workflows/

  # Warnings fail the check too
  prose check workflow.prose --strict

  # JSON output for CI/CD
  prose check workflow.prose --format json

  # Record the run in the history store
  prose check workflow.prose --record`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
	checkCmd.Flags().BoolVar(&checkFlags.strict, "strict", false, "treat warnings as errors")
	checkCmd.Flags().BoolVar(&checkFlags.record, "record", false, "record the runs in the history store")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := cli.ParseFormat(checkFlags.format)
	if err != nil {
		return err
	}

	strict := checkFlags.strict || cfg.Validator.WarningsAsErrors

	files, err := collectSourceFiles(args)
	if err != nil {
		return err
	}

	var store *history.Store
	if checkFlags.record || cfg.History.Enabled {
		store, err = history.NewStore(&history.Config{Path: cfg.History.Path})
		if err != nil {
			return cli.NewCommandError("check", err)
		}
		defer func() { _ = store.Close() }()
	}

	opts := checkOptions(cfg)
	reports := make([]*cli.Report, 0, len(files))
	sources := make(map[string]string, len(files))

	for _, file := range files {
		source, err := readSource(cfg, file)
		if err != nil {
			return err
		}
		start := time.Now()
		result := prose.Check(source, opts...)
		sources[file] = source
		reports = append(reports, cli.NewReport(file, result))

		if store != nil {
			run := history.NewRun(file)
			run.SourceHash = history.HashSource(source)
			run.Valid = result.Valid
			run.ErrorCount = len(result.Errors)
			run.WarningCount = len(result.Warnings)
			run.Duration = time.Since(start)
			if err := store.Record(cmd.Context(), run); err != nil {
				return cli.NewCommandError("check", err)
			}
		}
	}

	failed := false
	for _, r := range reports {
		if !r.Valid || (strict && len(r.Warnings) > 0) {
			failed = true
		}
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(os.Stdout, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if err := r.WriteText(os.Stdout, sources[r.File]); err != nil {
				return err
			}
		}
	}

	if failed {
		return errInvalid
	}
	return nil
}

// collectSourceFiles expands the argument list: files are taken as-is,
// directories are walked for .prose files.
func collectSourceFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, cli.NewCommandError("check", err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.Walk(arg, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() && strings.HasPrefix(filepath.Base(path), ".") && path != arg {
				return filepath.SkipDir
			}
			if !fi.IsDir() && filepath.Ext(path) == ".prose" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, cli.NewCommandError("check", err)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files found")
	}
	sort.Strings(files)
	return files, nil
}
