package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkguard/internal/anchor"
	"github.com/nao1215/linkguard/internal/collect"
	"github.com/nao1215/linkguard/internal/config"
	"github.com/nao1215/linkguard/internal/database"
	lglog "github.com/nao1215/linkguard/internal/log"
	"github.com/nao1215/linkguard/internal/model"
	"github.com/nao1215/linkguard/internal/pipeline"
	"github.com/nao1215/linkguard/internal/probe"
	"github.com/nao1215/linkguard/internal/repo"
	"github.com/nao1215/linkguard/internal/report"
	"github.com/nao1215/linkguard/internal/resolver"
	"github.com/nao1215/linkguard/internal/retry"
	"github.com/nao1215/linkguard/internal/rules"
	"github.com/nao1215/linkguard/internal/vcs"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Check every link in the documentation tree",
		Long: `Check collects the Markdown documents under the tree root, extracts every
link, and verifies that each one resolves:

- relative paths must exist under the tree root
- fragments must name a heading slug or explicit anchor of the target
- canonical repository URLs must exist at their ref (working tree for
  mutable refs such as main, git history or the hosting API otherwise)
- external URLs must answer with a non-error status

Paths given as arguments restrict the check to those directories or files.

Examples:
  # Check the current directory
  linkguard check

  # Check README.md and docs/ only, without network access
  linkguard check --offline README.md docs

  # Validate canonical repository links and write a JSON report
  linkguard check --repository https://github.com/owner/repo --format json -o report.json

  # Require canonical URLs everywhere
  linkguard check --forbid-relative --repository https://github.com/owner/repo`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	addCheckFlags(cmd)
	cmd.Flags().StringP("format", "F", config.DefaultFormat,
		"Report format: text, json or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the given file (creates directories if needed)")
	cmd.Flags().Bool("record", false,
		"Store the run in the history database")

	return cmd
}

// addCheckFlags registers the flags shared by check and watch.
func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("root", "r", ".",
		"Tree root; link targets and report paths are relative to it")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkguard.yaml in the root, current or XDG config directory)")
	cmd.Flags().Bool("strict", false,
		"Report fragments that point into non-text targets")
	cmd.Flags().Bool("forbid-relative", false,
		"Reject relative links in favor of canonical repository URLs")
	cmd.Flags().Bool("offline", false,
		"Do not probe external URLs")
	cmd.Flags().IntP("concurrency", "j", config.DefaultConcurrency,
		"Number of references resolved in parallel")
	cmd.Flags().String("repository", "",
		"Canonical repository base URL, e.g. https://github.com/owner/repo")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of a single probe or API request")
	cmd.Flags().Int("attempts", config.DefaultAttempts,
		"Attempts per external URL or remote ref lookup")
	cmd.Flags().Duration("backoff", config.DefaultBackoff,
		"Pause between two attempts")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for external probes (socks5://host:port)")
	cmd.Flags().Float64("rate", 0,
		"Maximum external probes per second (0 for unlimited)")
	cmd.Flags().StringSlice("allow", nil,
		"URL prefix accepted without a check (repeatable)")
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd.ErrOrStderr(), cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	rep, err := runCheck(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("check finished",
		"documents", rep.Documents,
		"references", rep.References,
		"violations", len(rep.Violations),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if err := outputReport(cmd.OutOrStdout(), cfg, rep); err != nil {
		return err
	}
	if cfg.Record {
		if err := recordRun(ctx, cfg, rep, logger); err != nil {
			return err
		}
	}
	if report.ExitCode(rep) != exitPass {
		return errViolations
	}
	return nil
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in increasing priority.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Root, err = flags.GetString("root"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	path, err := config.FindConfigFile(cfg.ConfigFilePath, cfg.Root)
	if err != nil {
		return nil, err
	}
	if path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(file)
		cfg.ConfigFilePath = path
	}

	if len(args) > 0 {
		cfg.Roots = args
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("forbid-relative") {
		cfg.ForbidRelativeLinks, _ = flags.GetBool("forbid-relative")
	}
	if flags.Changed("offline") {
		offline, _ := flags.GetBool("offline")
		cfg.External = !offline
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("repository") {
		cfg.RepositoryURL, _ = flags.GetString("repository")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("attempts") {
		cfg.Attempts, _ = flags.GetInt("attempts")
	}
	if flags.Changed("backoff") {
		cfg.Backoff, _ = flags.GetDuration("backoff")
	}
	if flags.Changed("proxy") {
		cfg.ProxyURL, _ = flags.GetString("proxy")
	}
	if flags.Changed("rate") {
		cfg.RateLimit, _ = flags.GetFloat64("rate")
	}
	if flags.Changed("allow") {
		allow, _ := flags.GetStringSlice("allow")
		cfg.AllowPrefixes = append(cfg.AllowPrefixes, allow...)
	}
	// Flags registered only on check.
	if f := flags.Lookup("format"); f != nil && f.Changed {
		cfg.Format = f.Value.String()
	}
	if f := flags.Lookup("output"); f != nil {
		cfg.OutputFile = f.Value.String()
	}
	if f := flags.Lookup("record"); f != nil && f.Changed {
		cfg.Record, _ = flags.GetBool("record")
	}

	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getLogFormat(cmd)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

func getLogFormat(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return "text"
		}
	}
	return format
}

// setupLogger creates the redacting logger on w and installs it as the default.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	logger := lglog.New(w, cfg.LogFormat, cfg.Verbose)
	slog.SetDefault(logger)
	return logger
}

// runCheck assembles a fresh pipeline for cfg and executes it once.
// Caches live for a single run only.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.Report, error) {
	c, err := collect.New(cfg.Root,
		collect.WithSuffixes(cfg.Suffixes),
		collect.WithExcludeDirs(cfg.ExcludeDirs),
		collect.WithExcludePatterns(cfg.ExcludePatterns),
		collect.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	store := pipeline.NewDocumentStore()
	anchors := anchor.NewCache(anchor.WithLoader(store.Load), anchor.WithLogger(logger))
	r, err := newResolver(ctx, cfg, c.Root(), anchors, logger)
	if err != nil {
		return nil, err
	}
	set, err := rules.Compile(cfg.Rules)
	if err != nil {
		return nil, err
	}

	p := pipeline.NewCheck(pipeline.Components{
		Collector: c,
		Roots:     cfg.Roots,
		Store:     store,
		Resolver:  r,
		Rules:     set,
		Batch: pipeline.NewBatchProcessor(
			pipeline.WithConcurrency(cfg.Concurrency),
			pipeline.WithBatchLogger(logger),
		),
	}, pipeline.WithLogger(logger))

	run := &pipeline.Run{}
	if err := p.Execute(ctx, run); err != nil {
		return nil, err
	}
	return run.Report, nil
}

// newResolver wires the external checker and the repository validator
// configured in cfg.
func newResolver(ctx context.Context, cfg *config.Config, root string, anchors *anchor.Cache, logger *slog.Logger) (*resolver.Resolver, error) {
	allow := probe.AllowList(cfg.EffectiveAllowPrefixes())
	policy := retry.Policy{Attempts: cfg.Attempts, Backoff: cfg.Backoff}

	opts := []resolver.Option{
		resolver.WithAnchors(anchors),
		resolver.WithAllowList(allow),
		resolver.WithStrict(cfg.Strict),
		resolver.WithForbidRelative(cfg.ForbidRelativeLinks),
		resolver.WithLogger(logger),
	}

	if cfg.External {
		client, err := probe.NewHTTPClient(cfg.ProxyURL, cfg.UserAgent)
		if err != nil {
			return nil, err
		}
		opts = append(opts, resolver.WithExternal(probe.NewChecker(
			probe.WithHTTPClient(client),
			probe.WithPolicy(policy),
			probe.WithTimeout(cfg.Timeout),
			probe.WithAllowList(allow),
			probe.WithRateLimit(cfg.RateLimit),
			probe.WithLogger(logger),
		)))
	} else {
		logger.Debug("external probing disabled")
	}

	if base := cfg.RepositoryBase(); base != "" {
		v, dir, err := newValidator(ctx, cfg, base, root, anchors, policy, logger)
		if err != nil {
			return nil, err
		}
		ref := "main"
		if len(cfg.MutableRefs) > 0 {
			ref = cfg.MutableRefs[0]
		}
		opts = append(opts,
			resolver.WithRepository(base, ref, v),
			resolver.WithRepositoryDir(dir),
		)
	}

	return resolver.New(root, opts...), nil
}

// newValidator checks that git is usable in root and builds the internal
// URL validator. Repositories hosted on github.com are looked up through
// the API; any other host through git ls-remote. Repository URL paths are
// relative to the top of the working tree, so the validator is rooted there
// and dir is the path of root inside it.
func newValidator(ctx context.Context, cfg *config.Config, base, root string, anchors *anchor.Cache, policy retry.Policy, logger *slog.Logger) (v *repo.Validator, dir string, err error) {
	git := vcs.NewGit(root, vcs.WithGitTimeout(cfg.GitTimeout), vcs.WithGitLogger(logger))
	if err = git.Check(ctx); err != nil {
		return nil, "", err
	}
	top, err := git.TopLevel(ctx)
	if err != nil {
		return nil, "", err
	}
	rel, err := filepath.Rel(top, root)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, "", fmt.Errorf("%w: %s is outside %s", vcs.ErrNotRepository, root, top)
	}

	var remote vcs.Remote
	if owner, name, ok := vcs.ParseGitHubRepo(base); ok {
		remote = vcs.NewGitHub(owner, name,
			vcs.WithToken(cfg.GitHubToken),
			vcs.WithGitHubPolicy(policy),
			vcs.WithAPITimeout(cfg.Timeout),
			vcs.WithAPIRate(cfg.RateLimit),
			vcs.WithGitHubLogger(logger),
		)
	} else {
		remote = git.LsRemote(cfg.Remote, policy)
	}

	v = repo.NewValidator(base, top,
		repo.WithMutableRefs(cfg.MutableRefs),
		repo.WithLocal(git),
		repo.WithRemote(remote),
		repo.WithAnchors(anchors),
		repo.WithStrict(cfg.Strict),
		repo.WithLogger(logger),
	)
	return v, filepath.ToSlash(rel), nil
}

// outputReport writes rep in the configured format to the output file or w.
func outputReport(w io.Writer, cfg *config.Config, rep *model.Report) error {
	if cfg.OutputFile != "" {
		if dir := filepath.Dir(cfg.OutputFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	writer, err := report.NewWriter(cfg.Format, w, cfg.Verbose)
	if err != nil {
		return err
	}
	if _, err := writer.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// recordRun stores rep in the history database.
func recordRun(ctx context.Context, cfg *config.Config, rep *model.Report, logger *slog.Logger) error {
	db, err := database.Open(cfg.HistoryDBPath(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	run := database.NewRun(rep, time.Now())
	if err := db.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	logger.Info("run recorded", "id", run.ID, "path", db.Path())
	return nil
}
