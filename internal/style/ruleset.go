// Copyright Szymon Zygula, 2026. All rights reserved.

package style

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// Category groups rules that decide one kind of typographic feature.
type Category string

const (
	CategoryLongS     Category = "long_s"
	CategoryLigature  Category = "ligature"
	CategoryOrnament  Category = "ornament"
	CategoryCatchword Category = "catchword"
)

// Categories lists every category in evaluation order.
var Categories = []Category{CategoryLongS, CategoryLigature, CategoryOrnament, CategoryCatchword}

func (c Category) valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Action is what a matching rule does.
type Action string

const (
	ActionKeep     Action = "keep"
	ActionLongS    Action = "long_s"
	ActionLigature Action = "ligature"
	ActionOrnament Action = "ornament"
	ActionDropCap  Action = "drop_cap"
	ActionNone     Action = "none"
	ActionEmit     Action = "emit"
	ActionSuppress Action = "suppress"
)

var categoryActions = map[Category][]Action{
	CategoryLongS:     {ActionLongS, ActionKeep},
	CategoryLigature:  {ActionLigature, ActionKeep},
	CategoryOrnament:  {ActionOrnament, ActionDropCap, ActionNone},
	CategoryCatchword: {ActionEmit, ActionSuppress},
}

// Rule is one condition→action entry of a category.
type Rule struct {
	ID        string
	Category  Category
	Condition Condition
	Actions   []Action

	// Pair is the character pair a ligature rule applies to.
	Pair string

	// Line is the YAML line the rule was declared on.
	Line int
}

// Does reports whether the rule performs action a.
func (r Rule) Does(a Action) bool {
	for _, x := range r.Actions {
		if x == a {
			return true
		}
	}
	return false
}

func (r Rule) actionString() string {
	parts := make([]string, len(r.Actions))
	for i, a := range r.Actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, " ")
}

// Render holds the markup templates used by the emitter. Templates use
// "#1" and "#2" as argument placeholders.
type Render struct {
	// LongS renders a long s.
	LongS string
	// Ligatures renders each ligated pair, keyed by the pair. A pair whose
	// s also carries a long s is looked up with ſ in its place ("ſt").
	Ligatures map[string]string
	// DropCap renders a drop capital: #1 the capital, #2 the rest of the word.
	DropCap string
	// Ornament renders the ornament for a structural level.
	Ornament map[types.UnitKind]string
	// Catchword renders a catchword: #1 the word.
	Catchword string
	// CatchwordDecorated renders catchwords with their decorations instead
	// of plain text.
	CatchwordDecorated bool
	// PageBreak is emitted at every estimated page boundary. May be empty.
	PageBreak string
	// Headings renders a section heading per level: #1 the heading (or the
	// unit identifier when the source has none), #2 the identifier.
	Headings map[types.UnitKind]string
	// WorkTitle renders the title of a work in an edition: #1 title, #2 alternative title.
	WorkTitle string
	// MarginNote renders a line number in the margin: #1 the identifier.
	MarginNote string
	// MarginNoteEvery prints a margin note on every n-th numbered line. Zero disables.
	MarginNoteEvery int
}

// RuleSet is the loaded style. It is immutable after loading and safe for
// concurrent use by any number of goroutines.
type RuleSet struct {
	Name   string
	Render Render
	rules  map[Category][]Rule
}

// Rules returns the rules of category c in declaration order. The returned
// slice must not be modified.
func (rs *RuleSet) Rules(c Category) []Rule {
	return rs.rules[c]
}

// First evaluates the rules of category c in declaration order and returns
// the first one whose condition holds. No implicit priority exists beyond
// order.
func (rs *RuleSet) First(c Category, ctx Context) (Rule, bool) {
	for _, r := range rs.rules[c] {
		if r.Condition.Eval(ctx) {
			return r, true
		}
	}
	return Rule{}, false
}

// FirstPair is First restricted to ligature rules for pair.
func (rs *RuleSet) FirstPair(pair string, ctx Context) (Rule, bool) {
	for _, r := range rs.rules[CategoryLigature] {
		if r.Pair == pair && r.Condition.Eval(ctx) {
			return r, true
		}
	}
	return Rule{}, false
}

// Pairs returns the distinct ligature pairs in declaration order.
func (rs *RuleSet) Pairs() []string {
	var pairs []string
	seen := make(map[string]bool)
	for _, r := range rs.rules[CategoryLigature] {
		if !seen[r.Pair] {
			seen[r.Pair] = true
			pairs = append(pairs, r.Pair)
		}
	}
	return pairs
}

// Describe writes a human-readable table of the rule set to w.
func (rs *RuleSet) Describe(w io.Writer) {
	fmt.Fprintf(w, "style: %s\n", rs.Name)
	for _, c := range Categories {
		rules := rs.rules[c]
		fmt.Fprintf(w, "\n[%s] %d rule(s)\n", c, len(rules))
		for i, r := range rules {
			cond := r.Condition.String()
			if r.Pair != "" {
				cond = fmt.Sprintf("pair %q: %s", r.Pair, cond)
			}
			fmt.Fprintf(w, "  %2d. %-24s %-40s -> %s\n", i+1, r.ID, cond, r.actionString())
		}
	}

	fmt.Fprintln(w, "\n[render]")
	fmt.Fprintf(w, "  long_s:     %q\n", rs.Render.LongS)
	for _, pair := range sortedKeys(rs.Render.Ligatures) {
		fmt.Fprintf(w, "  ligature %-3s %q\n", pair, rs.Render.Ligatures[pair])
	}
	fmt.Fprintf(w, "  drop_cap:   %q\n", rs.Render.DropCap)
	for _, level := range sortedKeys(rs.Render.Ornament) {
		fmt.Fprintf(w, "  ornament %-8s %q\n", level, rs.Render.Ornament[level])
	}
	fmt.Fprintf(w, "  catchword:  %q (decorated: %v)\n", rs.Render.Catchword, rs.Render.CatchwordDecorated)
	fmt.Fprintf(w, "  page_break: %q\n", rs.Render.PageBreak)
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
