// Copyright Szymon Zygula, 2026. All rights reserved.

package style

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// MaxWindow is the largest character offset a condition may inspect on
// either side of the evaluated position. Keeping every condition inside
// this window is what makes rule evaluation local and chunkable.
const MaxWindow = 3

// ConditionKind discriminates the Condition variant.
type ConditionKind int

const (
	CondAlways ConditionKind = iota
	CondNever
	CondNot
	CondAnd
	CondOr
	CondWordStart
	CondWordEnd
	CondLineStart
	CondCharIn
	CondCharIs
	CondWordMatches
	CondBreak
)

// CharClass is a named character class usable in `prev/next ... is` atoms.
type CharClass string

const (
	ClassUpper     CharClass = "upper"
	ClassLower     CharClass = "lower"
	ClassLetter    CharClass = "letter"
	ClassVowel     CharClass = "vowel"
	ClassConsonant CharClass = "consonant"
	ClassHyphen    CharClass = "hyphen"
	ClassNone      CharClass = "none"
)

var knownClasses = map[CharClass]bool{
	ClassUpper: true, ClassLower: true, ClassLetter: true, ClassVowel: true,
	ClassConsonant: true, ClassHyphen: true, ClassNone: true,
}

// Condition is a predicate over the local context of a position. It is a
// tagged variant: Kind selects which of the remaining fields apply.
//
//   - CondNot: Operands[0]
//   - CondAnd, CondOr: Operands
//   - CondCharIn: Offset, Set
//   - CondCharIs: Offset, Class
//   - CondWordMatches: Pattern
//   - CondBreak: Level
//
// Offsets are relative: negative looks before the evaluated span, positive
// looks after it. Evaluation is total and has no side effects.
type Condition struct {
	Kind     ConditionKind
	Offset   int
	Set      string
	Class    CharClass
	Pattern  *regexp.Regexp
	Level    types.UnitKind
	Operands []Condition
}

// Always is the unconditional condition.
func Always() Condition { return Condition{Kind: CondAlways} }

// Unconditional reports whether c matches in every context.
func (c Condition) Unconditional() bool { return c.Kind == CondAlways }

// Context is what a condition can observe. Word-level categories fill Word,
// Pos, Span and LineStart; the ornament category fills Break; the
// catchword category fills Text and Breaks.
type Context struct {
	// Word is the word being styled, as runes.
	Word []rune
	// Pos is the rune offset of the evaluated span in Word.
	Pos int
	// Span is the length of the evaluated span: 1 for a single character,
	// 2 for a ligature pair.
	Span int
	// LineStart is set when Word is the first word after a line, paragraph,
	// chapter or book break.
	LineStart bool

	// Text is the whole word for `word matches` atoms. When empty, Word is used.
	Text string

	// Break is the level of the structural break being considered.
	Break types.UnitKind

	// Breaks lists the structural levels seen between a page boundary and
	// its candidate catchword.
	Breaks []types.UnitKind
}

// Eval reports whether c holds in ctx.
func (c Condition) Eval(ctx Context) bool {
	switch c.Kind {
	case CondAlways:
		return true
	case CondNever:
		return false
	case CondNot:
		return !c.Operands[0].Eval(ctx)
	case CondAnd:
		for _, op := range c.Operands {
			if !op.Eval(ctx) {
				return false
			}
		}
		return true
	case CondOr:
		for _, op := range c.Operands {
			if op.Eval(ctx) {
				return true
			}
		}
		return false
	case CondWordStart:
		return ctx.Word != nil && ctx.Pos == 0
	case CondWordEnd:
		return ctx.Word != nil && ctx.Pos+ctx.span() == len(ctx.Word)
	case CondLineStart:
		return ctx.LineStart
	case CondCharIn:
		r, ok := ctx.neighbor(c.Offset)
		return ok && strings.ContainsRune(c.Set, r)
	case CondCharIs:
		r, ok := ctx.neighbor(c.Offset)
		return classMatches(c.Class, r, ok)
	case CondWordMatches:
		text := ctx.Text
		if text == "" {
			text = string(ctx.Word)
		}
		return c.Pattern.MatchString(text)
	case CondBreak:
		if ctx.Break != "" {
			return ctx.Break == c.Level
		}
		for _, b := range ctx.Breaks {
			if b == c.Level {
				return true
			}
		}
		return false
	}
	return false
}

func (ctx Context) span() int {
	if ctx.Span <= 0 {
		return 1
	}
	return ctx.Span
}

// neighbor returns the rune at a relative offset from the evaluated span.
// Offset -1 is the character just before the span, +1 the character just
// after it.
func (ctx Context) neighbor(offset int) (rune, bool) {
	var i int
	switch {
	case offset < 0:
		i = ctx.Pos + offset
	case offset > 0:
		i = ctx.Pos + ctx.span() - 1 + offset
	default:
		i = ctx.Pos
	}
	if i < 0 || i >= len(ctx.Word) {
		return 0, false
	}
	return ctx.Word[i], true
}

func classMatches(class CharClass, r rune, ok bool) bool {
	if class == ClassNone {
		return !ok
	}
	if !ok {
		return false
	}
	switch class {
	case ClassUpper:
		return unicode.IsUpper(r)
	case ClassLower:
		return unicode.IsLower(r)
	case ClassLetter:
		return unicode.IsLetter(r)
	case ClassVowel:
		return isVowel(r)
	case ClassConsonant:
		return unicode.IsLetter(r) && !isVowel(r)
	case ClassHyphen:
		return r == '-' || r == '‐' || r == '‑'
	}
	return false
}

const vowels = "aeiouyAEIOUYαεηιοωυΑΕΗΙΟΩΥ"

// isVowel strips diacritics before testing, so "é" and "ἀ" count as vowels.
func isVowel(r rune) bool {
	base := []rune(norm.NFD.String(string(r)))
	return len(base) > 0 && strings.ContainsRune(vowels, base[0])
}

// String renders c back into the condition language.
func (c Condition) String() string {
	switch c.Kind {
	case CondAlways:
		return "always"
	case CondNever:
		return "never"
	case CondNot:
		return "not " + c.Operands[0].grouped()
	case CondAnd, CondOr:
		sep := " and "
		if c.Kind == CondOr {
			sep = " or "
		}
		parts := make([]string, len(c.Operands))
		for i, op := range c.Operands {
			parts[i] = op.grouped()
		}
		return strings.Join(parts, sep)
	case CondWordStart:
		return "word_start"
	case CondWordEnd:
		return "word_end"
	case CondLineStart:
		return "line_start"
	case CondCharIn:
		return neighborPrefix(c.Offset) + " in " + strconv.Quote(c.Set)
	case CondCharIs:
		return neighborPrefix(c.Offset) + " is " + string(c.Class)
	case CondWordMatches:
		return "word matches " + strconv.Quote(c.Pattern.String())
	case CondBreak:
		return "break " + string(c.Level)
	}
	return "?"
}

func (c Condition) grouped() string {
	if c.Kind == CondAnd || c.Kind == CondOr {
		return "(" + c.String() + ")"
	}
	return c.String()
}

func neighborPrefix(offset int) string {
	dir, n := "next", offset
	if offset < 0 {
		dir, n = "prev", -offset
	}
	if n == 1 {
		return dir
	}
	return dir + " " + strconv.Itoa(n)
}
