// Package grammar implements the ordered multi-grammar recognizer for
// legacy transaction log lines.
//
// Each of the nine supported textual layouts is modeled as a Grammar: a
// compiled structural pattern plus a binder that maps its capture groups
// onto the fields of a ParsedRecord. Grammars live in a Registry in fixed
// priority order; the first grammar whose pattern matches a line wins,
// with no backtracking and no scoring. Two of the triple-colon layouts
// overlap lexically, so the registry order is part of the contract.
//
// Patterns are Go regexp (RE2), so per-line matching time is linear in
// the input and a pathological line cannot stall a worker.
package grammar

import (
	"fmt"
	"regexp"

	"golang-txnlog-normalizer/internal/fields"
	"golang-txnlog-normalizer/internal/models"
)

// bindFunc maps the capture groups of a matched line onto a record.
// Returning an error marks the whole line as unmatched; no partial
// record is ever produced.
type bindFunc func(groups []string, rec *models.ParsedRecord) error

// Grammar binds one textual layout to semantic field positions. Grammars
// are immutable once constructed and safe for concurrent use.
type Grammar struct {
	name     string
	priority int
	pattern  *regexp.Regexp
	bind     bindFunc
}

// Name returns the grammar's identifier
func (g *Grammar) Name() string {
	return g.name
}

// Priority returns the grammar's position in the registry order
func (g *Grammar) Priority() int {
	return g.priority
}

// Matches reports whether the line structurally matches this layout
func (g *Grammar) Matches(line string) bool {
	return g.pattern.MatchString(line)
}

// Outcome is the structured result of applying the registry to one line:
// either a record with the grammar that produced it, or a reason why the
// line was dropped.
type Outcome struct {
	Record  *models.ParsedRecord
	Grammar string
	Reason  string
}

// Matched reports whether the line produced a record
func (o Outcome) Matched() bool {
	return o.Record != nil
}

// Registry holds the nine grammars in fixed priority order. It is
// constructed once, never mutated afterwards, and safe for
// unsynchronized concurrent reads.
type Registry struct {
	grammars []*Grammar
}

// NewRegistry builds the registry with all nine layout grammars. The
// cleaner is injected so corrupted-sequence handling stays configurable;
// pass nil to use the default replacement table.
func NewRegistry(cleaner *fields.Cleaner) *Registry {
	if cleaner == nil {
		cleaner = fields.NewCleaner()
	}

	b := layoutBuilder{cleaner: cleaner}
	grammars := []*Grammar{
		b.doubleColon(),
		b.userPipe(),
		b.arrowNarrative(),
		b.labeledPipe(),
		b.labeledDash(),
		b.tripleColonLegacy(),
		b.positional(),
		b.tripleColonSuffix(),
		b.tripleColonMojibake(),
	}
	for i, g := range grammars {
		g.priority = i + 1
	}

	return &Registry{grammars: grammars}
}

// Len returns the number of registered grammars
func (r *Registry) Len() int {
	return len(r.grammars)
}

// Grammars returns the grammars in priority order
func (r *Registry) Grammars() []*Grammar {
	out := make([]*Grammar, len(r.grammars))
	copy(out, r.grammars)
	return out
}

// Apply tries each grammar in priority order against the line and returns
// the structured outcome. The first structural match wins; if its binder
// fails the line is unmatched with no fallthrough to lower-priority
// grammars, mirroring the all-or-nothing extraction contract.
func (r *Registry) Apply(line string, rowID int) Outcome {
	for _, g := range r.grammars {
		groups := g.pattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}

		rec := &models.ParsedRecord{
			RowID:       rowID,
			OriginalLog: line,
		}
		if err := g.bind(groups, rec); err != nil {
			return Outcome{
				Grammar: g.name,
				Reason:  fmt.Sprintf("grammar %s extraction failed: %v", g.name, err),
			}
		}
		return Outcome{Record: rec, Grammar: g.name}
	}

	return Outcome{Reason: "no grammar matched"}
}
