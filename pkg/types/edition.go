// Copyright Szymon Zygula, 2026. All rights reserved.

package types

// WorkInfo names one work in an edition.
type WorkInfo struct {
	// Title is the heading printed before the work.
	Title string `json:"title" yaml:"title"`

	// AltTitle is a second title, commonly the title in the original
	// language in bilingual editions.
	AltTitle string `json:"alt_title,omitempty" yaml:"alt_title,omitempty"`

	// Author overrides the edition author for this work.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Identifier is the source identifier (CTS URN or local path).
	Identifier string `json:"identifier" yaml:"identifier"`
}

// Edition is a collection of works typeset into one output document.
type Edition struct {
	// Name identifies the edition in progress output.
	Name string `json:"name" yaml:"name"`

	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Language is the ISO 639 code of the edition text (e.g. "grc"). It
	// selects the babel language of a standalone document.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	Works []WorkInfo `json:"works" yaml:"works"`
}
