package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitPass       = 0
	exitViolations = 1
	exitFailure    = 2
)

// errViolations is returned by commands whose check found violations.
// The report has already been written when it is returned.
var errViolations = errors.New("link check failed")

// NewRootCmd creates the root command for linkguard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkguard",
		Short: "Link and reference integrity checker for documentation trees",
		Long: `linkguard checks every link in a documentation tree and reports the broken ones.

It verifies relative file links, heading anchors, canonical repository URLs
(https://<host>/<owner>/<repo>/blob|tree/<ref>/<path>) against the working tree
or version-control history, and external URLs over HTTP.

Exit status is 0 when every reference resolves, 1 when violations were found
and 2 when the check itself could not run.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "text", "Log format on stderr (text or json)")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewAnchorsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with the resulting status.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return exitStatus(cmd.Execute(), stderr)
}

// exitStatus maps a command error to an exit status, printing
// infrastructure errors to stderr.
func exitStatus(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return exitPass
	case errors.Is(err, errViolations):
		return exitViolations
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
}
