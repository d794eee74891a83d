// Copyright Szymon Zygula, 2026. All rights reserved.

// Package emit renders a boundary-annotated stream as LaTeX. Text from the
// source is escaped exactly once; markup produced from the style's render
// templates is never escaped.
//
// See docs/ARCHITECTURE.md § LaTeX Emitter.
package emit

import (
	"strconv"
	"strings"

	"github.com/szymon-zygula/egrapsa/internal/style"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// Emit renders elems as a LaTeX body fragment. It fails with an
// *types.EmitError when a decoration has no configured rendering.
func Emit(elems []types.Element, rs *style.RuleSet) (string, error) {
	e := &emitter{rs: rs, elems: elems}
	for i := range elems {
		var err error
		if elems[i].Boundary != nil {
			err = e.boundary(i, elems[i].Boundary)
		} else {
			err = e.token(i, elems[i].Token)
		}
		if err != nil {
			return "", err
		}
	}
	if e.b.Len() > 0 {
		e.b.WriteByte('\n')
	}
	return e.b.String(), nil
}

type emitter struct {
	rs    *style.RuleSet
	elems []types.Element
	b     strings.Builder

	// pending is separator text held back until the next output, so that
	// trailing whitespace never piles up before a paragraph or line break.
	pending string

	// verse is set while consecutive line units are being emitted.
	verse bool
	// lines counts verse lines since the last section break, used when a
	// line identifier is not numeric.
	lines int
}

func (e *emitter) write(s string) {
	if e.pending != "" {
		e.b.WriteString(e.pending)
		e.pending = ""
	}
	e.b.WriteString(s)
}

// space records a whitespace run. Stronger separators already pending win.
func (e *emitter) space(newline bool) {
	switch {
	case e.pending == "":
		e.pending = " "
		if newline {
			e.pending = "\n"
		}
	case newline && e.pending == " ":
		e.pending = "\n"
	}
}

// blankLine ends the current paragraph.
func (e *emitter) blankLine() {
	if e.b.Len() == 0 {
		e.pending = ""
		return
	}
	e.pending = "\n\n"
}

func (e *emitter) boundary(i int, b *types.Boundary) error {
	render := e.rs.Render
	if b.Kind == types.BoundaryPage {
		if b.Catchword != nil {
			word, err := e.catchword(i, b.Catchword)
			if err != nil {
				return err
			}
			e.write(word)
			e.pending = "\n"
		}
		if render.PageBreak != "" {
			e.write(render.PageBreak)
			e.pending = "\n"
		}
	}
	if b.Ornament != "" {
		tmpl, ok := render.Ornament[b.Ornament]
		if !ok || tmpl == "" {
			return &types.EmitError{Decoration: "ornament " + string(b.Ornament), Index: i}
		}
		e.blankLine()
		e.write(tmpl)
		e.blankLine()
	}
	return nil
}

func (e *emitter) catchword(i int, hint *types.CatchwordHint) (string, error) {
	tmpl := e.rs.Render.Catchword
	if tmpl == "" {
		return "", &types.EmitError{Decoration: "catchword", Index: i, Text: hint.Text}
	}
	text := Escape(hint.Text)
	if e.rs.Render.CatchwordDecorated && hint.Index < len(e.elems) && e.elems[hint.Index].Token != nil {
		tok := e.elems[hint.Index].Token
		var decs []types.Decoration
		for _, d := range tok.Decorations {
			if d.Kind != types.DecorDropCap {
				decs = append(decs, d)
			}
		}
		var err error
		text, err = e.word(hint.Index, tok.Token, decs)
		if err != nil {
			return "", err
		}
	}
	return apply(tmpl, text), nil
}

func (e *emitter) token(i int, tok *types.StyledToken) error {
	switch tok.Kind {
	case types.TokenWord:
		s, err := e.word(i, tok.Token, tok.Decorations)
		if err != nil {
			return err
		}
		e.write(s)
	case types.TokenPunctuation:
		e.write(Escape(tok.Text))
	case types.TokenWhitespace:
		e.space(tok.Space == types.NewlineRun)
	case types.TokenBreak:
		return e.structural(i, tok.Token)
	}
	return nil
}

func (e *emitter) structural(i int, tok types.Token) error {
	render := e.rs.Render
	switch tok.Break {
	case types.UnitBook, types.UnitChapter:
		e.verse = false
		e.lines = 0
		e.blankLine()
		if tmpl := render.Headings[tok.Break]; tmpl != "" {
			heading := tok.Heading
			if heading == "" {
				heading = tok.UnitID
			}
			e.write(apply(tmpl, Escape(heading), Escape(tok.UnitID)))
			e.blankLine()
		}
	case types.UnitParagraph:
		e.verse = false
		e.blankLine()
	case types.UnitLine:
		if e.verse {
			e.pending = ` \\` + "\n"
		} else {
			e.blankLine()
		}
		e.verse = true
		e.lines++
		return e.marginNote(i, tok.UnitID)
	}
	return nil
}

func (e *emitter) marginNote(i int, id string) error {
	every := e.rs.Render.MarginNoteEvery
	if every <= 0 {
		return nil
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		n = e.lines
		id = strconv.Itoa(n)
	}
	if n%every != 0 {
		return nil
	}
	tmpl := e.rs.Render.MarginNote
	if tmpl == "" {
		return &types.EmitError{Decoration: "margin note", Index: i, Unit: id}
	}
	e.write(apply(tmpl, Escape(id)))
	return nil
}

// word renders one word with its decorations.
func (e *emitter) word(i int, tok types.Token, decs []types.Decoration) (string, error) {
	runes := []rune(tok.Text)
	fail := func(what string) error {
		return &types.EmitError{Decoration: what, Index: i, Text: tok.Text, Unit: tok.Pos.Unit}
	}
	render := e.rs.Render

	longS := make(map[int]bool)
	ligs := make(map[int]string)
	dropCap := false
	for _, d := range decs {
		switch d.Kind {
		case types.DecorLongS:
			if render.LongS == "" {
				return "", fail("long s")
			}
			longS[d.Pos] = true
		case types.DecorLigature:
			ligs[d.Pos] = d.Pair
		case types.DecorDropCap:
			if render.DropCap == "" {
				return "", fail("drop cap")
			}
			dropCap = true
		}
	}

	// glyph renders the span starting at rune j and returns its width. A
	// ligature covering a long s is looked up with ſ in place of s, so
	// both decorations reach the output.
	glyph := func(j int) (string, int, error) {
		if pair, ok := ligs[j]; ok && j+1 < len(runes) {
			key := []rune(pair)
			for k := range key {
				if longS[j+k] {
					key[k] = 'ſ'
				}
			}
			out := render.Ligatures[string(key)]
			if out == "" {
				return "", 0, fail("ligature " + string(key))
			}
			return out, 2, nil
		}
		if longS[j] {
			return render.LongS, 1, nil
		}
		return escapeRune(runes[j]), 1, nil
	}

	var b strings.Builder
	var initial string
	start := 0
	if dropCap && len(runes) > 0 {
		g, w, err := glyph(0)
		if err != nil {
			return "", err
		}
		initial, start = g, w
	}
	for j := start; j < len(runes); {
		g, w, err := glyph(j)
		if err != nil {
			return "", err
		}
		b.WriteString(g)
		j += w
	}
	if !dropCap || len(runes) == 0 {
		return b.String(), nil
	}
	return apply(render.DropCap, initial, b.String()), nil
}

// apply substitutes #1, #2 in a render template. Arguments are inserted
// verbatim in a single pass and never rescanned.
func apply(tmpl string, args ...string) string {
	pairs := make([]string, 0, 2*len(args))
	for n, a := range args {
		pairs = append(pairs, "#"+strconv.Itoa(n+1), a)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var specials = map[rune]string{
	'\\': `\textbackslash{}`,
	'{':  `\{`,
	'}':  `\}`,
	'$':  `\$`,
	'&':  `\&`,
	'#':  `\#`,
	'^':  `\textasciicircum{}`,
	'_':  `\_`,
	'~':  `\textasciitilde{}`,
	'%':  `\%`,
}

func escapeRune(r rune) string {
	if s, ok := specials[r]; ok {
		return s
	}
	return string(r)
}

// Escape escapes the LaTeX special characters of s.
func Escape(s string) string {
	if !strings.ContainsAny(s, `\{}$&#^_~%`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		b.WriteString(escapeRune(r))
	}
	return b.String()
}

// WorkTitle renders the heading printed before a work of an edition, or ""
// when the style has no work_title template or the work no title.
func WorkTitle(rs *style.RuleSet, title, altTitle string) string {
	if rs.Render.WorkTitle == "" || title == "" {
		return ""
	}
	return apply(rs.Render.WorkTitle, Escape(title), Escape(altTitle)) + "\n\n"
}
