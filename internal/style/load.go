// Copyright Szymon Zygula, 2026. All rights reserved.

// Package style loads the declarative typographic ruleset: ordered
// condition→action rules for long s, ligatures, ornaments and catchwords,
// plus the markup templates used to render them.
//
// Within a category, rules are evaluated in declaration order and the first
// matching rule wins. A category with no rules performs no transformation.
//
// See docs/ARCHITECTURE.md § Style Configuration.
package style

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/szymon-zygula/egrapsa/pkg/types"
)

//go:embed default.yaml
var defaultStyle []byte

// Default returns the built-in style.
func Default() *RuleSet {
	rs, err := Parse(defaultStyle, "default.yaml")
	if err != nil {
		panic(fmt.Sprintf("style: built-in style is invalid: %v", err))
	}
	return rs
}

// Load reads and parses a ruleset file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigError{Path: path, Message: "reading ruleset", Err: err}
	}
	return Parse(data, path)
}

type ruleEntry struct {
	ID        string `yaml:"id"`
	Condition string `yaml:"condition"`
	Action    string `yaml:"action"`
	Pair      string `yaml:"pair"`
}

type renderEntry struct {
	LongS              string            `yaml:"long_s"`
	Ligatures          map[string]string `yaml:"ligatures"`
	DropCap            string            `yaml:"drop_cap"`
	Ornament           map[string]string `yaml:"ornament"`
	Catchword          string            `yaml:"catchword"`
	CatchwordDecorated bool              `yaml:"catchword_decorated"`
	PageBreak          string            `yaml:"page_break"`
	Headings           map[string]string `yaml:"headings"`
	WorkTitle          string            `yaml:"work_title"`
	MarginNote         string            `yaml:"margin_note"`
	MarginNoteEvery    int               `yaml:"margin_note_every"`
}

var (
	topLevelKeys = []string{"name", "rules", "render"}
	ruleKeys     = []string{"id", "condition", "action", "pair"}
	renderKeys   = []string{
		"long_s", "ligatures", "drop_cap", "ornament", "catchword", "catchword_decorated",
		"page_break", "headings", "work_title", "margin_note", "margin_note_every",
	}
)

// Parse parses ruleset YAML. name is used in error messages.
func Parse(data []byte, name string) (*RuleSet, error) {
	cfgErr := func(line int, msg string, err error) error {
		return &types.ConfigError{Path: name, Line: line, Message: msg, Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cfgErr(0, "malformed YAML", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, cfgErr(0, "empty ruleset", nil)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, cfgErr(root.Line, "ruleset must be a mapping", nil)
	}
	if err := checkKeys(root, topLevelKeys, name, ""); err != nil {
		return nil, err
	}

	rsName := name
	var rules []Rule
	var render Render
	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "name":
			rsName = val.Value
		case "rules":
			parsed, err := parseRules(val, name)
			if err != nil {
				return nil, err
			}
			rules = parsed
		case "render":
			parsed, err := parseRender(val, name)
			if err != nil {
				return nil, err
			}
			render = parsed
		}
	}

	rs, err := New(rsName, rules, render)
	if err != nil {
		if ce, ok := err.(*types.ConfigError); ok {
			ce.Path = name
		}
		return nil, err
	}
	return rs, nil
}

func parseRules(node *yaml.Node, file string) ([]Rule, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &types.ConfigError{Path: file, Line: node.Line, Message: "rules must map categories to rule lists"}
	}

	var rules []Rule
	seenCategory := make(map[Category]bool)
	for i := 0; i < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		cat := Category(key.Value)
		if !cat.valid() {
			return nil, &types.ConfigError{
				Path: file, Line: key.Line,
				Message: fmt.Sprintf("unknown category %q (want one of long_s, ligature, ornament, catchword)", key.Value),
			}
		}
		if seenCategory[cat] {
			return nil, &types.ConfigError{Path: file, Line: key.Line, Category: string(cat), Message: "category declared twice"}
		}
		seenCategory[cat] = true

		if val.Kind == yaml.ScalarNode && val.Tag == "!!null" {
			continue
		}
		if val.Kind != yaml.SequenceNode {
			return nil, &types.ConfigError{Path: file, Line: val.Line, Category: string(cat), Message: "rules must be a list"}
		}
		for _, item := range val.Content {
			r, err := parseRule(item, cat, file)
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
		}
	}
	return rules, nil
}

func parseRule(node *yaml.Node, cat Category, file string) (Rule, error) {
	if node.Kind != yaml.MappingNode {
		return Rule{}, &types.ConfigError{Path: file, Line: node.Line, Category: string(cat), Message: "rule must be a mapping"}
	}
	if err := checkKeys(node, ruleKeys, file, string(cat)); err != nil {
		return Rule{}, err
	}
	var e ruleEntry
	if err := node.Decode(&e); err != nil {
		return Rule{}, &types.ConfigError{Path: file, Line: node.Line, Category: string(cat), Message: "malformed rule", Err: err}
	}

	fail := func(msg string, err error) (Rule, error) {
		return Rule{}, &types.ConfigError{Path: file, Line: node.Line, Category: string(cat), RuleID: e.ID, Message: msg, Err: err}
	}
	if strings.TrimSpace(e.Condition) == "" {
		return fail("missing condition", nil)
	}
	cond, err := ParseCondition(e.Condition, cat)
	if err != nil {
		return fail("invalid condition", err)
	}

	var actions []Action
	for _, f := range strings.Fields(e.Action) {
		actions = append(actions, Action(f))
	}
	return Rule{
		ID:        e.ID,
		Category:  cat,
		Condition: cond,
		Actions:   actions,
		Pair:      e.Pair,
		Line:      node.Line,
	}, nil
}

func parseRender(node *yaml.Node, file string) (Render, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return Render{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return Render{}, &types.ConfigError{Path: file, Line: node.Line, Message: "render must be a mapping"}
	}
	if err := checkKeys(node, renderKeys, file, "render"); err != nil {
		return Render{}, err
	}
	var e renderEntry
	if err := node.Decode(&e); err != nil {
		return Render{}, &types.ConfigError{Path: file, Line: node.Line, Message: "malformed render table", Err: err}
	}
	if e.MarginNoteEvery < 0 {
		return Render{}, &types.ConfigError{Path: file, Line: node.Line, Message: "margin_note_every must not be negative"}
	}

	levels := func(field string, in map[string]string) (map[types.UnitKind]string, error) {
		out := make(map[types.UnitKind]string, len(in))
		for k, v := range in {
			level := types.UnitKind(k)
			if !level.Valid() {
				return nil, &types.ConfigError{Path: file, Line: node.Line, Message: fmt.Sprintf("render.%s: unknown level %q", field, k)}
			}
			out[level] = v
		}
		return out, nil
	}
	ornament, err := levels("ornament", e.Ornament)
	if err != nil {
		return Render{}, err
	}
	headings, err := levels("headings", e.Headings)
	if err != nil {
		return Render{}, err
	}

	return Render{
		LongS:              e.LongS,
		Ligatures:          e.Ligatures,
		DropCap:            e.DropCap,
		Ornament:           ornament,
		Catchword:          e.Catchword,
		CatchwordDecorated: e.CatchwordDecorated,
		PageBreak:          e.PageBreak,
		Headings:           headings,
		WorkTitle:          e.WorkTitle,
		MarginNote:         e.MarginNote,
		MarginNoteEvery:    e.MarginNoteEvery,
	}, nil
}

// checkKeys rejects mapping keys outside allowed.
func checkKeys(node *yaml.Node, allowed []string, file, category string) error {
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		ok := false
		for _, a := range allowed {
			if key.Value == a {
				ok = true
				break
			}
		}
		if !ok {
			return &types.ConfigError{
				Path: file, Line: key.Line, Category: category,
				Message: fmt.Sprintf("unknown key %q", key.Value),
			}
		}
	}
	return nil
}

// New validates rules and builds a RuleSet. Rules are kept in the given
// order within each category.
func New(name string, rules []Rule, render Render) (*RuleSet, error) {
	rs := &RuleSet{
		Name:   name,
		Render: render,
		rules:  make(map[Category][]Rule, len(Categories)),
	}

	ids := make(map[string]bool)
	// unconditional remembers the first `always` rule per category and pair.
	unconditional := make(map[string]Rule)

	for _, r := range rules {
		fail := func(msg string) error {
			return &types.ConfigError{Line: r.Line, Category: string(r.Category), RuleID: r.ID, Message: msg}
		}
		if !r.Category.valid() {
			return nil, fail(fmt.Sprintf("unknown category %q", r.Category))
		}
		if r.ID == "" {
			return nil, fail("missing rule id")
		}
		if ids[r.ID] {
			return nil, fail("duplicate rule id")
		}
		ids[r.ID] = true

		if err := checkActions(r); err != nil {
			return nil, fail(err.Error())
		}
		if err := checkPair(r); err != nil {
			return nil, fail(err.Error())
		}

		if r.Condition.Unconditional() {
			key := string(r.Category) + "/" + r.Pair
			if prev, ok := unconditional[key]; ok && prev.actionString() != r.actionString() {
				return nil, fail(fmt.Sprintf("conflicts with unconditional rule %q (%s vs %s)",
					prev.ID, prev.actionString(), r.actionString()))
			}
			if _, ok := unconditional[key]; !ok {
				unconditional[key] = r
			}
		}

		rs.rules[r.Category] = append(rs.rules[r.Category], r)
	}
	return rs, nil
}

func checkActions(r Rule) error {
	if len(r.Actions) == 0 {
		return fmt.Errorf("missing action")
	}
	allowed := categoryActions[r.Category]
	seen := make(map[Action]bool)
	for _, a := range r.Actions {
		ok := false
		for _, x := range allowed {
			if a == x {
				ok = true
			}
		}
		if !ok {
			return fmt.Errorf("unknown action %q for category %s", a, r.Category)
		}
		if seen[a] {
			return fmt.Errorf("action %q repeated", a)
		}
		seen[a] = true
	}
	if len(r.Actions) > 1 && r.Category != CategoryOrnament {
		return fmt.Errorf("category %s takes a single action", r.Category)
	}
	if len(r.Actions) > 1 && seen[ActionNone] {
		return fmt.Errorf("action none cannot be combined")
	}
	return nil
}

func checkPair(r Rule) error {
	if r.Category != CategoryLigature {
		if r.Pair != "" {
			return fmt.Errorf("pair is only valid for ligature rules")
		}
		return nil
	}
	if utf8.RuneCountInString(r.Pair) != 2 {
		return fmt.Errorf("ligature pair %q must be exactly two characters", r.Pair)
	}
	for _, c := range r.Pair {
		if !unicode.IsLetter(c) {
			return fmt.Errorf("ligature pair %q must consist of letters", r.Pair)
		}
	}
	return nil
}
