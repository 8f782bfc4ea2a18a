package trigger

import (
	"regexp"
	"strings"
)

// Kind identifies the directive variant
type Kind int

const (
	// Merge is an unconditional merge directive
	Merge Kind = iota
	// MergeAfter is a merge conditional on another pull request being merged
	MergeAfter
)

// Directive is a parsed trigger command
type Directive struct {
	Kind   Kind
	Target string // captured URL for MergeAfter, empty otherwise
}

// rule pairs a line-anchored pattern with the directive it produces
type rule struct {
	pattern *regexp.Regexp
	kind    Kind
}

// Grammar is the fixed, ordered table of recognized trigger directives.
// Rule order is the priority order; it must never depend on map iteration.
type Grammar struct {
	rules []rule
}

// NewGrammar builds the grammar for a trigger prefix. The prefix is
// matched literally and case-sensitively at the start of a line.
func NewGrammar(prefix string) *Grammar {
	quoted := regexp.QuoteMeta(prefix)
	return &Grammar{
		rules: []rule{
			{regexp.MustCompile(`(?m)^` + quoted + ` merge$`), Merge},
			{regexp.MustCompile(`(?m)^` + quoted + ` merge-after (.*)$`), MergeAfter},
		},
	}
}

// Match tests the text blobs against the grammar and returns the winning
// directive, or nil when no blob matches any rule. Rule order takes
// precedence over blob order: the first rule is tested against every blob
// before the second rule is tested against any.
func (g *Grammar) Match(blobs []string) *Directive {
	for _, r := range g.rules {
		for _, blob := range blobs {
			m := r.pattern.FindStringSubmatch(blob)
			if m == nil {
				continue
			}
			d := &Directive{Kind: r.kind}
			if len(m) > 1 {
				d.Target = strings.TrimSpace(m[1])
			}
			return d
		}
	}
	return nil
}
