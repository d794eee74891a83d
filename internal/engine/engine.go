// Copyright Szymon Zygula, 2026. All rights reserved.

// Package engine applies the typographic rules of a style to a token
// stream. Decorations are additive: every StyledToken keeps its original
// token text untouched.
//
// The decoration of a token depends only on the token itself and a small
// window of preceding tokens (the most recent structural break). State is
// reset at every chapter and book break, so any partition of the stream
// that cuts only before those breaks styles identically to the whole.
//
// See docs/ARCHITECTURE.md § Typographic Rule Engine.
package engine

import (
	"sort"

	"github.com/szymon-zygula/egrapsa/internal/style"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// state is the local window carried between tokens.
type state struct {
	// lineStart is set until the first word after a break.
	lineStart bool
	// dropCap is the id of the ornament rule that requested a drop cap for
	// the next word, or "".
	dropCap string
}

// Apply styles tokens with rs. It never fails for a RuleSet produced by
// the style loader.
func Apply(tokens []types.Token, rs *style.RuleSet) []types.StyledToken {
	pairs := make(map[string]bool)
	for _, p := range rs.Pairs() {
		pairs[p] = true
	}

	out := make([]types.StyledToken, len(tokens))
	st := state{lineStart: true}
	for i, tok := range tokens {
		out[i] = types.StyledToken{Token: tok}
		switch tok.Kind {
		case types.TokenBreak:
			if tok.IsSectionBreak() {
				st = state{}
			}
			st.lineStart = true
			out[i].Decorations, st = styleBreak(tok, st, rs)
		case types.TokenWord:
			out[i].Decorations = styleWord(tok.Text, st, rs, pairs)
			st.lineStart = false
			st.dropCap = ""
		}
	}
	return out
}

// styleBreak evaluates the ornament rules for a structural break.
func styleBreak(tok types.Token, st state, rs *style.RuleSet) ([]types.Decoration, state) {
	r, ok := rs.First(style.CategoryOrnament, style.Context{Break: tok.Break})
	if !ok {
		return nil, st
	}
	var decs []types.Decoration
	if r.Does(style.ActionOrnament) {
		decs = append(decs, types.Decoration{Kind: types.DecorOrnament, Level: tok.Break, Rule: r.ID})
	}
	if r.Does(style.ActionDropCap) {
		st.dropCap = r.ID
	}
	return decs, st
}

// styleWord computes the character decorations of one word.
func styleWord(text string, st state, rs *style.RuleSet, pairs map[string]bool) []types.Decoration {
	word := []rune(text)
	var decs []types.Decoration

	if st.dropCap != "" && len(word) > 0 {
		decs = append(decs, types.Decoration{Kind: types.DecorDropCap, Pos: 0, Rule: st.dropCap})
	}

	for i, r := range word {
		if r != 's' {
			continue
		}
		ctx := style.Context{Word: word, Pos: i, Span: 1, LineStart: st.lineStart, Text: text}
		if rule, ok := rs.First(style.CategoryLongS, ctx); ok && rule.Does(style.ActionLongS) {
			decs = append(decs, types.Decoration{Kind: types.DecorLongS, Pos: i, Rule: rule.ID})
		}
	}

	if len(pairs) > 0 {
		for i := 0; i+1 < len(word); {
			pair := string(word[i : i+2])
			if pairs[pair] {
				ctx := style.Context{Word: word, Pos: i, Span: 2, LineStart: st.lineStart, Text: text}
				if rule, ok := rs.FirstPair(pair, ctx); ok && rule.Does(style.ActionLigature) {
					decs = append(decs, types.Decoration{Kind: types.DecorLigature, Pos: i, Pair: pair, Rule: rule.ID})
					i += 2
					continue
				}
			}
			i++
		}
	}

	sort.SliceStable(decs, func(a, b int) bool { return decs[a].Pos < decs[b].Pos })
	return decs
}
