package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkguard/internal/collect"
	"github.com/nao1215/linkguard/internal/config"
	"github.com/nao1215/linkguard/internal/database"
)

// NewHistoryCmd creates the history command and its diff subcommand.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded check runs",
		Long: `History lists the runs stored with 'linkguard check --record', newest first.

Runs are stored per tree root in $XDG_DATA_HOME/linkguard/history.db unless
history.path is set in the configuration file or --db is given.

Examples:
  # Runs of the current directory
  linkguard history

  # Runs of every root
  linkguard history --all

  # What changed between the last two runs
  linkguard history diff`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}
	addHistoryFlags(cmd)
	cmd.Flags().Bool("all", false, "List runs of every tree root")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 for all)")

	cmd.AddCommand(newHistoryDiffCmd())
	return cmd
}

func newHistoryDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show violations introduced and resolved by the latest run",
		Long: `Diff compares the two most recent runs of the tree root and prints the
violations that appeared and the ones that were fixed.`,
		Args: cobra.NoArgs,
		RunE: runHistoryDiffCmd,
	}
	addHistoryFlags(cmd)
	return cmd
}

func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("root", "r", ".", "Tree root whose runs are shown")
	cmd.Flags().StringP("config", "c", "", "Configuration file path")
	cmd.Flags().String("db", "", "History database path")
	cmd.Flags().Bool("json", false, "Output in JSON format")
}

// historyTarget resolves the canonical tree root and database path used by
// the history commands.
func historyTarget(cmd *cobra.Command) (root, dbPath string, err error) {
	flags := cmd.Flags()
	rootFlag, _ := flags.GetString("root")
	configFlag, _ := flags.GetString("config")
	dbFlag, _ := flags.GetString("db")

	c, err := collect.New(rootFlag)
	if err != nil {
		return "", "", err
	}

	cfg := config.NewConfig()
	path, err := config.FindConfigFile(configFlag, c.Root())
	if err != nil {
		return "", "", err
	}
	if path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return "", "", fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(file)
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	return c.Root(), cfg.HistoryDBPath(), nil
}

// openHistory opens an existing history database. It returns nil without
// an error when nothing has been recorded yet.
func openHistory(dbPath string) (*database.HistoryDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbPath, opts)
	if errors.Is(err, database.ErrDatabaseNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// runSummary is the JSON shape of a listed run.
type runSummary struct {
	ID         string    `json:"id"`
	Root       string    `json:"root"`
	Timestamp  time.Time `json:"timestamp"`
	Passed     bool      `json:"passed"`
	Violations int       `json:"violations"`
	Documents  int       `json:"documents"`
	References int       `json:"references"`
	Digest     string    `json:"digest"`
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	root, dbPath, err := historyTarget(cmd)
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	if all {
		root = ""
	}

	out := cmd.OutOrStdout()
	db, err := openHistory(dbPath)
	if err != nil {
		return err
	}
	if db == nil {
		if asJSON {
			return writeJSON(out, []runSummary{})
		}
		fmt.Fprintln(out, "No runs recorded yet. Use 'linkguard check --record' to record one.")
		return nil
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background(), root, limit)
	if err != nil {
		return err
	}

	summaries := make([]runSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, runSummary{
			ID:         r.ID,
			Root:       r.Root,
			Timestamp:  r.Timestamp,
			Passed:     r.Passed,
			Violations: len(r.Violations),
			Documents:  r.Documents,
			References: r.References,
			Digest:     r.Digest,
		})
	}
	if asJSON {
		return writeJSON(out, summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No runs recorded for this root.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tRESULT\tVIOLATIONS\tREFERENCES\tROOT")
	for _, s := range summaries {
		result := "FAILED"
		if s.Passed {
			result = "PASSED"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			shortID(s.ID),
			s.Timestamp.Local().Format(time.DateTime),
			result,
			s.Violations,
			s.References,
			s.Root,
		)
	}
	return w.Flush()
}

// diffOutput is the JSON shape of a run comparison.
type diffOutput struct {
	Older      string   `json:"older"`
	Newer      string   `json:"newer"`
	Introduced []string `json:"introduced"`
	Resolved   []string `json:"resolved"`
}

func runHistoryDiffCmd(cmd *cobra.Command, _ []string) error {
	root, dbPath, err := historyTarget(cmd)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	db, err := openHistory(dbPath)
	if err != nil {
		return err
	}
	if db == nil {
		fmt.Fprintln(out, "Not enough runs to compare. Record at least two with 'linkguard check --record'.")
		return nil
	}
	defer db.Close()

	diff, err := db.DiffLatest(context.Background(), root)
	if errors.Is(err, database.ErrNotEnoughRuns) {
		fmt.Fprintln(out, "Not enough runs to compare. Record at least two with 'linkguard check --record'.")
		return nil
	}
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, diffOutput{
			Older:      diff.Older.ID,
			Newer:      diff.Newer.ID,
			Introduced: nonNil(diff.Introduced),
			Resolved:   nonNil(diff.Resolved),
		})
	}
	printDiff(out, diff)
	return nil
}

func printDiff(out io.Writer, diff *database.RunDiff) {
	fmt.Fprintf(out, "Comparing %s (%s) -> %s (%s)\n\n",
		shortID(diff.Older.ID), diff.Older.Timestamp.Local().Format(time.DateTime),
		shortID(diff.Newer.ID), diff.Newer.Timestamp.Local().Format(time.DateTime),
	)
	if len(diff.Introduced) == 0 && len(diff.Resolved) == 0 {
		fmt.Fprintln(out, "No changes.")
		return
	}
	fmt.Fprintf(out, "Introduced (%d):\n", len(diff.Introduced))
	for _, v := range diff.Introduced {
		fmt.Fprintf(out, "  + %s\n", v)
	}
	fmt.Fprintf(out, "Resolved (%d):\n", len(diff.Resolved))
	for _, v := range diff.Resolved {
		fmt.Fprintf(out, "  - %s\n", v)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
