package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkguard/internal/anchor"
	"github.com/nao1215/linkguard/internal/model"
)

// NewAnchorsCmd creates the anchors command.
func NewAnchorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anchors <file>...",
		Short: "Print the anchors a document provides",
		Long: `Anchors prints every heading of the given documents together with the slug
a link fragment must use to reach it, followed by explicit HTML anchors
(<a id="..."> and <a name="...">).

Repeated headings get numbered slugs (overview, overview-1, ...), exactly as
the check resolves them.

Examples:
  linkguard anchors README.md
  linkguard anchors --json docs/guide.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnchorsCmd,
	}
	cmd.Flags().Bool("json", false, "Output anchors as JSON")
	return cmd
}

// documentAnchors is the JSON shape of one inspected document.
type documentAnchors struct {
	File    string         `json:"file"`
	Anchors []model.Anchor `json:"anchors"`
}

func runAnchorsCmd(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	docs := make([]documentAnchors, 0, len(args))
	for _, file := range args {
		data, err := os.ReadFile(file) //nolint:gosec // user-provided path is intentional
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		idx := anchor.Build(string(data))
		anchors := idx.Anchors
		if anchors == nil {
			anchors = []model.Anchor{}
		}
		docs = append(docs, documentAnchors{File: file, Anchors: anchors})
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, docs)
	}
	for i, d := range docs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := printAnchors(out, d); err != nil {
			return err
		}
	}
	return nil
}

func printAnchors(out io.Writer, d documentAnchors) error {
	fmt.Fprintln(out, d.File)
	if len(d.Anchors) == 0 {
		fmt.Fprintln(out, "  (no anchors)")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  LINE\tLEVEL\tSLUG\tHEADING")
	for _, a := range d.Anchors {
		if a.Heading.Line == 0 {
			fmt.Fprintf(w, "  -\t-\t#%s\t(html anchor)\n", a.Slug)
			continue
		}
		fmt.Fprintf(w, "  %s\t%s\t#%s\t%s\n",
			strconv.Itoa(a.Heading.Line),
			strings.Repeat("#", a.Heading.Level),
			a.Slug,
			a.Heading.Text,
		)
	}
	return w.Flush()
}
