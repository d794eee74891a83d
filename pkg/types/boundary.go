// Copyright Szymon Zygula, 2026. All rights reserved.

package types

// BoundaryKind is the layout level of an estimated boundary.
type BoundaryKind string

const (
	BoundaryLine BoundaryKind = "line"
	BoundaryPage BoundaryKind = "page"
	// BoundarySection carries an ornament slot that does not fall on an
	// estimated page boundary.
	BoundarySection BoundaryKind = "section"
)

// CatchwordHint is the word to echo at the foot of a page.
type CatchwordHint struct {
	// Text is the undecorated text of the word.
	Text string
	// Index is the position of the word token in the element stream.
	Index int
}

// Boundary is an estimated page or line break in the styled stream.
type Boundary struct {
	Kind BoundaryKind

	// Page is the 1-based number of the page that ends at this boundary
	// (zero for line boundaries).
	Page int

	// Catchword is set on page boundaries that echo the next word.
	Catchword *CatchwordHint

	// Ornament is the structural level whose ornament occupies this
	// boundary ("" when none). An ornament always displaces a catchword.
	Ornament UnitKind
}

// Element is one entry of the boundary-annotated stream: exactly one of
// Token and Boundary is non-nil.
type Element struct {
	Token    *StyledToken
	Boundary *Boundary
}
