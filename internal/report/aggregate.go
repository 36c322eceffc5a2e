package report

import (
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/linkguard/internal/model"
)

// Input is everything a run produced.
type Input struct {
	Root       string
	Documents  int
	References int
	Results    []model.ResolutionResult
	// Extra are violations found outside reference resolution, such as
	// drift rule matches.
	Extra []model.Violation
}

// Aggregate builds the report. Violations with identical lines are merged,
// keeping the smallest source line, and sorted lexicographically by line.
func Aggregate(in Input) *model.Report {
	byLine := make(map[string]model.Violation)
	add := func(v model.Violation) {
		key := v.String()
		if prev, ok := byLine[key]; ok && prev.Line <= v.Line {
			return
		}
		byLine[key] = v
	}
	for _, r := range in.Results {
		if r.Status == model.StatusBroken {
			add(r.Violation())
		}
	}
	for _, v := range in.Extra {
		add(v)
	}

	keys := make([]string, 0, len(byLine))
	for k := range byLine {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	violations := make([]model.Violation, 0, len(keys))
	for _, k := range keys {
		violations = append(violations, byLine[k])
	}

	return &model.Report{
		Root:       in.Root,
		Documents:  in.Documents,
		References: in.References,
		Violations: violations,
		Digest:     Digest(keys),
	}
}

// Digest returns the hex SHA3-256 of the newline-terminated lines.
func Digest(lines []string) string {
	h := sha3.New256()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ExitCode maps a report to the process exit status: 0 on pass, 1 when
// violations were found.
func ExitCode(r *model.Report) int {
	if r.Passed() {
		return 0
	}
	return 1
}

// countByReason returns violation counts keyed by reason, in reason order.
func countByReason(r *model.Report) ([]model.Reason, map[model.Reason]int) {
	counts := make(map[model.Reason]int)
	var order []model.Reason
	for _, v := range r.Violations {
		if counts[v.Reason] == 0 {
			order = append(order, v.Reason)
		}
		counts[v.Reason]++
	}
	sort.Slice(order, func(i, j int) bool {
		return strings.Compare(string(order[i]), string(order[j])) < 0
	})
	return order, counts
}
