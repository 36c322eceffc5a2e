// Package rules reports stale references: text that matches a configured
// drift rule, such as a path or name the project has since replaced.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/linkguard/internal/config"
	"github.com/nao1215/linkguard/internal/model"
)

// ErrInvalidRule is returned for a rule whose pattern does not compile.
var ErrInvalidRule = config.ErrInvalidRule

type compiled struct {
	id       string
	guidance string
	re       *regexp.Regexp
}

// Set is a compiled list of drift rules.
type Set struct {
	rules []compiled
}

// Compile compiles rules in order.
func Compile(rules []config.Rule) (*Set, error) {
	s := &Set{rules: make([]compiled, 0, len(rules))}
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.ID, err)
		}
		s.rules = append(s.rules, compiled{id: r.ID, guidance: r.Guidance, re: re})
	}
	return s, nil
}

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Scan reports every match of every rule in doc. Fenced code is scanned too:
// stale commands in examples are drift as well.
func (s *Set) Scan(doc *model.Document) []model.Violation {
	if s.Len() == 0 {
		return nil
	}
	var out []model.Violation
	lines := strings.Split(strings.ReplaceAll(doc.Text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		for _, r := range s.rules {
			for _, m := range r.re.FindAllString(line, -1) {
				if m == "" {
					continue
				}
				out = append(out, model.Violation{
					File:   doc.Rel,
					Line:   i + 1,
					Raw:    m,
					Reason: model.ReasonStaleReference,
					Detail: detail(r),
				})
			}
		}
	}
	return out
}

func detail(r compiled) string {
	if r.guidance == "" {
		return r.id
	}
	return r.id + ": " + r.guidance
}
