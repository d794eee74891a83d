// Copyright Szymon Zygula, 2026. All rights reserved.

package types

import "fmt"

// DecorationKind names a typographic feature attached to a token.
type DecorationKind string

const (
	DecorLongS    DecorationKind = "long_s"
	DecorLigature DecorationKind = "ligature"
	DecorDropCap  DecorationKind = "drop_cap"
	DecorOrnament DecorationKind = "ornament"
)

// Decoration is an additive annotation on a token. Character decorations
// address rune offsets within the token text; an Ornament decoration sits
// on a break token and names its level.
type Decoration struct {
	Kind DecorationKind

	// Pos is the rune offset of the decorated character (LongS, DropCap)
	// or of the first character of the pair (Ligature).
	Pos int

	// Pair is the ligated character pair, e.g. "ae" or "ct".
	Pair string

	// Level is the structural level of an Ornament decoration.
	Level UnitKind

	// Rule is the id of the rule that produced the decoration.
	Rule string
}

func (d Decoration) String() string {
	switch d.Kind {
	case DecorLigature:
		return fmt.Sprintf("Ligature(%s)@%d", d.Pair, d.Pos)
	case DecorOrnament:
		return fmt.Sprintf("Ornament(%s)", d.Level)
	case DecorLongS:
		return fmt.Sprintf("LongS@%d", d.Pos)
	case DecorDropCap:
		return fmt.Sprintf("DropCap@%d", d.Pos)
	}
	return string(d.Kind)
}

// StyledToken is a Token plus the decorations applied to it, ordered by
// position. The token text is never altered.
type StyledToken struct {
	Token
	Decorations []Decoration
}

// Has reports whether the token carries a decoration of kind k.
func (s StyledToken) Has(k DecorationKind) bool {
	for _, d := range s.Decorations {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// Count returns the number of decorations of kind k.
func (s StyledToken) Count(k DecorationKind) int {
	n := 0
	for _, d := range s.Decorations {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Ornament returns the ornament level of a decorated break, or "".
func (s StyledToken) Ornament() UnitKind {
	for _, d := range s.Decorations {
		if d.Kind == DecorOrnament {
			return d.Level
		}
	}
	return ""
}
