// Copyright Szymon Zygula, 2026. All rights reserved.

// Package types defines shared data structures for the egrapsa pipeline:
// the source document model, the token stream in its plain, styled and
// boundary-annotated forms, pipeline configuration, and the error kinds
// surfaced by each stage.
//
// See docs/ARCHITECTURE.md § Data Model.
package types

// UnitKind is the structural level of a source unit.
type UnitKind string

const (
	UnitBook      UnitKind = "book"
	UnitChapter   UnitKind = "chapter"
	UnitParagraph UnitKind = "paragraph"
	UnitLine      UnitKind = "line"
)

// Valid reports whether k is one of the known unit kinds.
func (k UnitKind) Valid() bool {
	switch k {
	case UnitBook, UnitChapter, UnitParagraph, UnitLine:
		return true
	}
	return false
}

// Sectioning reports whether k is a chapter or book. Documents are only
// ever partitioned at sectioning units.
func (k UnitKind) Sectioning() bool {
	return k == UnitBook || k == UnitChapter
}

// Unit is one structural unit of a source document. A unit holds its own
// text (which precedes the text of its children) and its children in
// document order.
type Unit struct {
	// Kind is the structural level of the unit.
	Kind UnitKind `json:"kind" yaml:"kind"`

	// ID is the stable citation identifier supplied by the source
	// (e.g. "1", "1.2", "402"). It is never synthesised.
	ID string `json:"id" yaml:"id"`

	// Heading is an optional title carried by the source (e.g. "Book I").
	Heading string `json:"heading,omitempty" yaml:"heading,omitempty"`

	// Text is the raw text that belongs directly to this unit.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Children are nested units in document order.
	Children []Unit `json:"children,omitempty" yaml:"children,omitempty"`
}

// SourceDocument is a fetched work. It is immutable once returned by a
// fetcher and owned by the pipeline for one conversion run.
type SourceDocument struct {
	// Identifier is the work/edition identifier the document was fetched
	// with (a CTS URN or a local path).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the work title, when the source provides one.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Author is the work author, when the source provides one.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Language is the ISO 639 language code of the text (e.g. "grc", "lat").
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Units are the top-level structural units in document order.
	Units []Unit `json:"units" yaml:"units"`
}

// WordCount returns a rough count of whitespace-separated words across all
// units. It is used for progress reporting only.
func (d *SourceDocument) WordCount() int {
	n := 0
	var walk func(units []Unit)
	walk = func(units []Unit) {
		for _, u := range units {
			inWord := false
			for _, r := range u.Text {
				space := r == ' ' || r == '\n' || r == '\t' || r == '\r'
				if !space && !inWord {
					n++
				}
				inWord = !space
			}
			walk(u.Children)
		}
	}
	walk(d.Units)
	return n
}
