// Copyright Szymon Zygula, 2026. All rights reserved.

package style

import (
	"fmt"
	"regexp"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// The condition language:
//
//	expr   := and ("or" and)*
//	and    := unary ("and" unary)*
//	unary  := "not" unary | "(" expr ")" | atom
//	atom   := "always" | "never" | "word_start" | "word_end" | "line_start"
//	        | ("prev" | "next") INT? ("in" STRING | "is" CLASS)
//	        | "word" "matches" STRING
//	        | "break" LEVEL
var (
	conditionLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Paren", Pattern: `[()]`},
	})

	conditionParser = participle.MustBuild[exprNode](
		participle.Lexer(conditionLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)
)

type exprNode struct {
	Terms []*andNode `parser:"@@ ( 'or' @@ )*"`
}

type andNode struct {
	Factors []*unaryNode `parser:"@@ ( 'and' @@ )*"`
}

type unaryNode struct {
	Not   *unaryNode `parser:"  'not' @@"`
	Group *exprNode  `parser:"| '(' @@ ')'"`
	Atom  *atomNode  `parser:"| @@"`
}

type atomNode struct {
	Pos lexer.Position

	Always    bool          `parser:"  @'always'"`
	Never     bool          `parser:"| @'never'"`
	WordStart bool          `parser:"| @'word_start'"`
	WordEnd   bool          `parser:"| @'word_end'"`
	LineStart bool          `parser:"| @'line_start'"`
	Neighbor  *neighborNode `parser:"| @@"`
	Matches   *string       `parser:"| 'word' 'matches' @String"`
	Break     *string       `parser:"| 'break' @Ident"`
}

type neighborNode struct {
	Dir    string  `parser:"@( 'prev' | 'next' )"`
	Offset *int    `parser:"@Int?"`
	In     *string `parser:"( 'in' @String"`
	Is     *string `parser:"| 'is' @Ident )"`
}

// atomScope records which categories may use an atom.
type atomScope uint8

const (
	scopeWord atomScope = 1 << iota
	scopeOrnament
	scopeCatchword
)

func categoryScope(c Category) atomScope {
	switch c {
	case CategoryLongS, CategoryLigature:
		return scopeWord
	case CategoryOrnament:
		return scopeOrnament
	case CategoryCatchword:
		return scopeCatchword
	}
	return 0
}

// ParseCondition parses src in the condition language and checks that
// every atom is legal in category c and stays within MaxWindow.
func ParseCondition(src string, c Category) (Condition, error) {
	ast, err := conditionParser.ParseString("", src)
	if err != nil {
		return Condition{}, fmt.Errorf("parsing condition %q: %w", src, err)
	}
	return ast.compile(categoryScope(c), c)
}

func (e *exprNode) compile(scope atomScope, c Category) (Condition, error) {
	ops := make([]Condition, 0, len(e.Terms))
	for _, t := range e.Terms {
		op, err := t.compile(scope, c)
		if err != nil {
			return Condition{}, err
		}
		ops = append(ops, op)
	}
	if len(ops) == 1 {
		return ops[0], nil
	}
	return Condition{Kind: CondOr, Operands: ops}, nil
}

func (a *andNode) compile(scope atomScope, c Category) (Condition, error) {
	ops := make([]Condition, 0, len(a.Factors))
	for _, f := range a.Factors {
		op, err := f.compile(scope, c)
		if err != nil {
			return Condition{}, err
		}
		ops = append(ops, op)
	}
	if len(ops) == 1 {
		return ops[0], nil
	}
	return Condition{Kind: CondAnd, Operands: ops}, nil
}

func (u *unaryNode) compile(scope atomScope, c Category) (Condition, error) {
	switch {
	case u.Not != nil:
		op, err := u.Not.compile(scope, c)
		if err != nil {
			return Condition{}, err
		}
		return Condition{Kind: CondNot, Operands: []Condition{op}}, nil
	case u.Group != nil:
		return u.Group.compile(scope, c)
	default:
		return u.Atom.compile(scope, c)
	}
}

func (a *atomNode) compile(scope atomScope, c Category) (Condition, error) {
	allow := func(name string, s atomScope) error {
		if scope&s == 0 {
			return fmt.Errorf("%s: %q is not allowed in category %s", a.Pos, name, c)
		}
		return nil
	}

	switch {
	case a.Always:
		return Condition{Kind: CondAlways}, nil
	case a.Never:
		return Condition{Kind: CondNever}, nil
	case a.WordStart:
		return Condition{Kind: CondWordStart}, allow("word_start", scopeWord)
	case a.WordEnd:
		return Condition{Kind: CondWordEnd}, allow("word_end", scopeWord)
	case a.LineStart:
		return Condition{Kind: CondLineStart}, allow("line_start", scopeWord)
	case a.Matches != nil:
		if err := allow("word matches", scopeWord|scopeCatchword); err != nil {
			return Condition{}, err
		}
		re, err := regexp.Compile(*a.Matches)
		if err != nil {
			return Condition{}, fmt.Errorf("%s: invalid pattern %q: %w", a.Pos, *a.Matches, err)
		}
		return Condition{Kind: CondWordMatches, Pattern: re}, nil
	case a.Break != nil:
		if err := allow("break", scopeOrnament|scopeCatchword); err != nil {
			return Condition{}, err
		}
		level := types.UnitKind(*a.Break)
		if !level.Valid() {
			return Condition{}, fmt.Errorf("%s: unknown break level %q", a.Pos, *a.Break)
		}
		return Condition{Kind: CondBreak, Level: level}, nil
	case a.Neighbor != nil:
		if err := allow(a.Neighbor.Dir, scopeWord); err != nil {
			return Condition{}, err
		}
		return a.Neighbor.compile(a.Pos)
	}
	return Condition{}, fmt.Errorf("%s: empty condition", a.Pos)
}

func (n *neighborNode) compile(pos lexer.Position) (Condition, error) {
	offset := 1
	if n.Offset != nil {
		offset = *n.Offset
	}
	if offset < 1 || offset > MaxWindow {
		return Condition{}, fmt.Errorf("%s: offset %d outside the context window 1..%d", pos, offset, MaxWindow)
	}
	if n.Dir == "prev" {
		offset = -offset
	}

	if n.In != nil {
		if *n.In == "" {
			return Condition{}, fmt.Errorf("%s: empty character set", pos)
		}
		return Condition{Kind: CondCharIn, Offset: offset, Set: *n.In}, nil
	}
	class := CharClass(*n.Is)
	if !knownClasses[class] {
		return Condition{}, fmt.Errorf("%s: unknown character class %q", pos, *n.Is)
	}
	return Condition{Kind: CondCharIs, Offset: offset, Class: class}, nil
}
