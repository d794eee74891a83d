// Copyright Szymon Zygula, 2026. All rights reserved.

// Package paginate estimates page and line boundaries over a styled token
// stream by word counting, and decides which boundaries carry an ornament
// slot or a catchword. The estimate is approximate; LaTeX does the real
// line breaking.
//
// See docs/ARCHITECTURE.md § Pagination Estimator.
package paginate

import (
	"github.com/szymon-zygula/egrapsa/internal/style"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// Estimate interleaves boundaries with the styled tokens. Token order is
// preserved; the result depends only on its inputs.
func Estimate(styled []types.StyledToken, layout types.LayoutConfig, rs *style.RuleSet) []types.Element {
	layout = layout.Normalized()
	out := forward(styled, layout)
	assignCatchwords(out, rs)
	return out
}

// forward inserts page, line and section boundaries.
func forward(styled []types.StyledToken, layout types.LayoutConfig) []types.Element {
	out := make([]types.Element, 0, len(styled)+len(styled)/layout.WordsPerLine+1)
	page := 1
	words := 0 // words on the current page
	due := false
	// fresh indexes the page boundary just closed while no word has
	// followed it yet, or is -1.
	fresh := -1

	closePage := func(ornament types.UnitKind) {
		fresh = len(out)
		out = append(out, types.Element{Boundary: &types.Boundary{
			Kind:     types.BoundaryPage,
			Page:     page,
			Ornament: ornament,
		}})
		page++
		words = 0
		due = false
	}

	for i := range styled {
		tok := styled[i]
		switch {
		case tok.IsSectionBreak():
			orn := tok.Ornament()
			switch {
			case due:
				closePage(orn)
			case orn != "" && layout.ChapterNewPage && words > 0:
				closePage(orn)
			case orn != "" && fresh >= 0 && out[fresh].Boundary.Ornament == "":
				out[fresh].Boundary.Ornament = orn
			case orn != "":
				out = append(out, types.Element{Boundary: &types.Boundary{
					Kind:     types.BoundarySection,
					Ornament: orn,
				}})
			}
		case tok.IsWord():
			switch {
			case due:
				closePage("")
			case words > 0 && words%layout.WordsPerLine == 0:
				out = append(out, types.Element{Boundary: &types.Boundary{Kind: types.BoundaryLine}})
			}
			fresh = -1
			words++
			if words >= layout.WordsPerPage {
				due = true
			}
		}
		out = append(out, types.Element{Token: &tok})
	}
	return out
}

// assignCatchwords walks the stream backwards, remembering the next word
// and the structural levels crossed before reaching it.
func assignCatchwords(elems []types.Element, rs *style.RuleSet) {
	next := -1
	var crossed []types.UnitKind

	for i := len(elems) - 1; i >= 0; i-- {
		e := elems[i]
		if e.Token != nil {
			switch {
			case e.Token.IsWord():
				next = i
				crossed = nil
			case e.Token.Kind == types.TokenBreak:
				crossed = append([]types.UnitKind{e.Token.Break}, crossed...)
			}
			continue
		}

		b := e.Boundary
		if b.Kind != types.BoundaryPage || b.Ornament != "" || next < 0 {
			continue
		}
		text := elems[next].Token.Text
		ctx := style.Context{Text: text, Breaks: crossed}
		if r, ok := rs.First(style.CategoryCatchword, ctx); ok && r.Does(style.ActionEmit) {
			b.Catchword = &types.CatchwordHint{Text: text, Index: next}
		}
	}
}

// Stats summarises an annotated stream.
type Stats struct {
	Words      int
	Pages      int
	Catchwords int
	Ornaments  int
}

// Summarize counts words, estimated pages, catchwords and ornament slots.
func Summarize(elems []types.Element) Stats {
	s := Stats{Pages: 1}
	for _, e := range elems {
		if e.Token != nil {
			if e.Token.IsWord() {
				s.Words++
			}
			continue
		}
		if e.Boundary.Kind == types.BoundaryPage {
			s.Pages++
		}
		if e.Boundary.Catchword != nil {
			s.Catchwords++
		}
		if e.Boundary.Ornament != "" {
			s.Ornaments++
		}
	}
	return s
}
