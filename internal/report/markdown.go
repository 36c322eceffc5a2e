package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/linkguard/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, for example as a pull
// request comment.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeViolations(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run totals.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Link Check Report")
	md.PlainText("")

	status := "✅ Passed"
	if !report.Passed() {
		status = "❌ Failed"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Documents", strconv.Itoa(report.Documents)},
			{"References", strconv.Itoa(report.References)},
			{"Violations", strconv.Itoa(len(report.Violations))},
			{"Digest", "`" + shortDigest(report.Digest) + "`"},
			{"Status", status},
		},
	})
	md.PlainText("")
}

// writeSummary writes the verdict callout and the breakdown by reason.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	if report.Passed() {
		md.Tip("All references resolved.")
		md.PlainText("")
		return
	}

	md.Cautionf("%d broken reference(s) found.", len(report.Violations))
	md.PlainText("")

	reasons, counts := countByReason(report)
	if len(reasons) > 1 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Violations by Reason"),
			piechart.WithShowData(true),
		)
		for _, r := range reasons {
			chart.LabelAndIntValue(string(r), uint64(counts[r])) //nolint:gosec // counts are positive
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

// writeViolations writes one table row per violation, then the fix hints
// of every reason that occurred.
func (w *MarkdownWriter) writeViolations(md *markdown.Markdown, report *model.Report) {
	md.H2("Violations")
	md.PlainText("")

	if report.Passed() {
		md.PlainText("No broken references.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Violations))
	for i, v := range report.Violations {
		rows[i] = []string{
			escapeCell(v.File),
			strconv.Itoa(v.Line),
			"`" + escapeCell(v.Raw) + "`",
			escapeCell(model.Explain(v.Reason, v.Detail)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Line", "Reference", "Explanation"},
		Rows:   rows,
	})
	md.PlainText("")

	reasons, _ := countByReason(report)
	hints := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if hint := r.Hint(); hint != "" {
			hints = append(hints, "**"+string(r)+"**: "+hint)
		}
	}
	if len(hints) > 0 {
		md.H2("How to Fix")
		md.PlainText("")
		md.BulletList(hints...)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [linkguard](https://github.com/nao1215/linkguard)*")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func shortDigest(d string) string {
	if len(d) <= 12 {
		return d
	}
	return d[:12]
}
