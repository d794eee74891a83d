// Copyright Szymon Zygula, 2026. All rights reserved.

// Package segment splits a source document into an ordered token stream:
// words, punctuation, collapsed whitespace runs and structural breaks.
//
// See docs/ARCHITECTURE.md § Lexical Segmenter.
package segment

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// Segment tokenizes doc. It is deterministic and fails only on text that
// is not valid UTF-8.
func Segment(doc *types.SourceDocument) ([]types.Token, error) {
	return Units(doc.Units)
}

// Units tokenizes a sequence of units. Each unit is opened by a
// StructuralBreak token carrying the unit's own identifier and heading,
// followed by its text and then its children.
func Units(units []types.Unit) ([]types.Token, error) {
	var out []types.Token
	for _, u := range units {
		var err error
		out, err = appendUnit(out, u)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendUnit(out []types.Token, u types.Unit) ([]types.Token, error) {
	brk := types.Break(u.Kind, u.ID, u.Heading)
	brk.Pos = types.Position{Unit: u.ID}
	out = append(out, brk)

	if u.Text != "" {
		toks, err := Text(u.Text, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toks...)
	}
	for _, c := range u.Children {
		var err error
		out, err = appendUnit(out, c)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Text tokenizes raw text belonging to the unit identified by unitID.
// Positions refer to byte offsets in the original (unnormalised) text.
func Text(text, unitID string) ([]types.Token, error) {
	if i := invalidOffset(text); i >= 0 {
		return nil, &types.DecodeError{Unit: unitID, Offset: i}
	}

	var out []types.Token
	s := &scanner{src: text}
	for !s.done() {
		start := s.pos
		r := s.peek()
		switch {
		case isSpace(r):
			n, newline := s.spaceRun()
			tok := types.Space(n)
			if newline {
				tok = types.Newline(n)
			}
			tok.Pos = types.Position{Unit: unitID, Offset: start}
			out = append(out, tok)
		case isWordRune(r):
			word := s.word()
			tok := types.Word(norm.NFC.String(word))
			tok.Pos = types.Position{Unit: unitID, Offset: start}
			out = append(out, tok)
		default:
			sym := s.symbol()
			tok := types.Punct(norm.NFC.String(sym))
			tok.Pos = types.Position{Unit: unitID, Offset: start}
			out = append(out, tok)
		}
	}
	return out, nil
}

// invalidOffset returns the byte offset of the first invalid UTF-8
// sequence in s, or -1.
func invalidOffset(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() rune {
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

func (s *scanner) peekAt(offset int) (rune, int) {
	if offset >= len(s.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s.src[offset:])
}

func (s *scanner) spaceRun() (n int, newline bool) {
	start := s.pos
	for !s.done() {
		r, size := s.peekAt(s.pos)
		if !isSpace(r) {
			break
		}
		if r == '\n' {
			newline = true
		}
		s.pos += size
	}
	return s.pos - start, newline
}

// word consumes letters, marks and digits, keeping an apostrophe or hyphen
// only when it joins two word characters ("o'er", "to-day").
func (s *scanner) word() string {
	start := s.pos
	for !s.done() {
		r, size := s.peekAt(s.pos)
		if isWordRune(r) {
			s.pos += size
			continue
		}
		if isJoiner(r) {
			next, _ := s.peekAt(s.pos + size)
			if isWordRune(next) {
				s.pos += size
				continue
			}
		}
		break
	}
	return s.src[start:s.pos]
}

// symbol consumes one punctuation rune together with any combining marks
// that follow it.
func (s *scanner) symbol() string {
	start := s.pos
	_, size := s.peekAt(s.pos)
	s.pos += size
	for !s.done() {
		r, size := s.peekAt(s.pos)
		if !unicode.Is(unicode.M, r) {
			break
		}
		s.pos += size
	}
	return s.src[start:s.pos]
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.M, r)
}

func isJoiner(r rune) bool {
	switch r {
	case '\'', '’', '-', '‐':
		return true
	}
	return false
}
