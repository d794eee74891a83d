// Copyright Szymon Zygula, 2026. All rights reserved.

package types

// TokenKind discriminates the Token variant.
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenPunctuation
	TokenWhitespace
	TokenBreak
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenPunctuation:
		return "punctuation"
	case TokenWhitespace:
		return "whitespace"
	case TokenBreak:
		return "break"
	}
	return "unknown"
}

// WhitespaceKind classifies a collapsed whitespace run.
type WhitespaceKind int

const (
	// SpaceRun is a run without line feeds.
	SpaceRun WhitespaceKind = iota
	// NewlineRun is a run containing at least one line feed.
	NewlineRun
)

// Token is the atomic unit of the segmented stream. Exactly the fields
// relevant to Kind are set:
//
//   - TokenWord, TokenPunctuation: Text
//   - TokenWhitespace: Space and RunLength
//   - TokenBreak: Break, UnitID and Heading
//
// Tokens are values; later stages never modify them in place.
type Token struct {
	Kind TokenKind

	// Text is the word or punctuation symbol, NFC-normalised.
	Text string

	// Space and RunLength describe a whitespace run; RunLength is the
	// original length of the run in bytes.
	Space     WhitespaceKind
	RunLength int

	// Break is the structural level of a TokenBreak.
	Break UnitKind
	// UnitID is the source identifier of the unit a TokenBreak opens.
	UnitID string
	// Heading is the unit heading carried by the source, if any.
	Heading string

	// Pos locates the token in the source for diagnostics.
	Pos Position
}

// Position locates a token in the source document.
type Position struct {
	// Unit is the identifier of the innermost enclosing unit.
	Unit string
	// Offset is the byte offset of the token within that unit's text.
	Offset int
}

// Word constructs a word token.
func Word(text string) Token { return Token{Kind: TokenWord, Text: text} }

// Punct constructs a punctuation token.
func Punct(symbol string) Token { return Token{Kind: TokenPunctuation, Text: symbol} }

// Space constructs a whitespace token for a run of n spaces.
func Space(n int) Token { return Token{Kind: TokenWhitespace, Space: SpaceRun, RunLength: n} }

// Newline constructs a whitespace token for a run of n bytes containing a line feed.
func Newline(n int) Token { return Token{Kind: TokenWhitespace, Space: NewlineRun, RunLength: n} }

// Break constructs a structural break token.
func Break(kind UnitKind, id, heading string) Token {
	return Token{Kind: TokenBreak, Break: kind, UnitID: id, Heading: heading}
}

// IsWord reports whether t is a word token.
func (t Token) IsWord() bool { return t.Kind == TokenWord }

// IsSectionBreak reports whether t is a chapter or book break.
func (t Token) IsSectionBreak() bool {
	return t.Kind == TokenBreak && t.Break.Sectioning()
}
