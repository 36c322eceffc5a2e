package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkguard/internal/collect"
	"github.com/nao1215/linkguard/internal/config"
	"github.com/nao1215/linkguard/internal/watch"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Re-run the check whenever a document changes",
		Long: `Watch runs the check once, then again each time a collected document under
the tree root is created, modified, renamed or removed. Bursts of changes are
coalesced into one run.

External URLs are not probed unless --external is given, so that editing a
document does not hammer remote sites.

Examples:
  # Watch the current directory
  linkguard watch

  # Watch docs/ with external probing and a longer quiet period
  linkguard watch --external --debounce 1s docs`,
		Args: cobra.ArbitraryArgs,
		RunE: runWatchCmd,
	}

	addCheckFlags(cmd)
	cmd.Flags().Bool("external", false,
		"Probe external URLs on every run")
	cmd.Flags().Duration("debounce", watch.DefaultDebounce,
		"Quiet period before a re-run")

	return cmd
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.External, _ = cmd.Flags().GetBool("external")
	debounce, _ := cmd.Flags().GetDuration("debounce")
	logger := setupLogger(cmd.ErrOrStderr(), cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := collect.New(cfg.Root,
		collect.WithSuffixes(cfg.Suffixes),
		collect.WithExcludeDirs(cfg.ExcludeDirs),
		collect.WithExcludePatterns(cfg.ExcludePatterns),
		collect.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	w, err := watch.New(c.Root(),
		watch.WithFilter(c.Eligible),
		watch.WithSkipDir(func(name string) bool { return slices.Contains(cfg.ExcludeDirs, name) }),
		watch.WithDebounce(debounce),
		watch.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	out := cmd.OutOrStdout()
	if err := checkAndPrint(ctx, out, cfg, logger); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nWatching %s for changes (Ctrl+C to stop)...\n", c.Root())

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		fmt.Fprintf(out, "\nChanged: %s\n", strings.Join(changed, ", "))
		return checkAndPrint(ctx, out, cfg, logger)
	})
}

// checkAndPrint runs one check and prints its report. Violations are not
// an error in watch mode.
func checkAndPrint(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	rep, err := runCheck(ctx, cfg, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[%s] ", time.Now().Format(time.TimeOnly))
	return outputReport(out, cfg, rep)
}
