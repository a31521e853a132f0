package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/prose/pkg/cli"
	"mercator-hq/prose/pkg/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the check-run history store",
}

var historyListFlags struct {
	file   string
	limit  int
	format string
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent check runs",
	Long: `List recent check runs recorded by watch mode, newest first.

Examples:
  # Last 20 runs across all files
  prose history list

  # Runs for one file
  prose history list --file workflow.prose

  # JSON output
  prose history list --format json`,
	RunE: runHistoryList,
}

var historyPruneFlags struct {
	olderThan time.Duration
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old run records",
	Long: `Delete run records older than the given age.

Examples:
  # Drop everything older than 30 days
  prose history prune --older-than 720h`,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyListCmd.Flags().StringVarP(&historyListFlags.file, "file", "f", "", "only runs for this file")
	historyListCmd.Flags().IntVarP(&historyListFlags.limit, "limit", "n", 20, "maximum runs to list")
	historyListCmd.Flags().StringVar(&historyListFlags.format, "format", "text", "output format: text, json")

	historyPruneCmd.Flags().DurationVar(&historyPruneFlags.olderThan, "older-than", 90*24*time.Hour, "delete records older than this")
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.NewStore(&history.Config{Path: cfg.History.Path})
	if err != nil {
		return nil, cli.NewCommandError("history", err)
	}
	return store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	format, err := cli.ParseFormat(historyListFlags.format)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var runs []*history.Run
	if historyListFlags.file != "" {
		runs, err = store.ForFile(ctx, historyListFlags.file, historyListFlags.limit)
	} else {
		runs, err = store.Recent(ctx, historyListFlags.limit)
	}
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, runs)
	}

	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, run := range runs {
		verdict := "ok"
		if !run.Valid {
			verdict = "invalid"
		}
		fmt.Printf("%s  %-7s  %d error(s), %d warning(s)  %s  %s\n",
			run.CheckedAt.Format(time.RFC3339), verdict,
			run.ErrorCount, run.WarningCount, run.Duration.Round(time.Millisecond), run.File)
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cutoff := time.Now().UTC().Add(-historyPruneFlags.olderThan)
	deleted, err := store.Prune(context.Background(), cutoff)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	fmt.Printf("deleted %d run record(s)\n", deleted)
	return nil
}
