// Copyright Szymon Zygula, 2026. All rights reserved.

package source

import (
	"regexp"
	"strings"

	"github.com/szymon-zygula/egrapsa/pkg/types"
)

var headingLine = regexp.MustCompile(`^(BOOK|CHAPTER)\s+(\S+?)\.?(?:\s+(.*))?$`)

// ParseText builds a SourceDocument from plain text. Lines of the form
// "BOOK I" or "CHAPTER 3. The Wrath" open book and chapter units; blank
// lines separate paragraphs. Line breaks inside a paragraph are kept.
//
// The text is not validated here; invalid UTF-8 is reported by the
// segmenter.
func ParseText(data []byte, id string) *types.SourceDocument {
	text := strings.TrimPrefix(string(data), "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	b := &textBuilder{book: -1, chapter: -1}
	var para []string
	flush := func() {
		if len(para) > 0 {
			b.paragraph(strings.Join(para, "\n"))
			para = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if m := headingLine.FindStringSubmatch(trimmed); m != nil {
			flush()
			heading := strings.TrimSpace(m[3])
			if heading == "" {
				heading = trimmed
			}
			if m[1] == "BOOK" {
				b.openBook(m[2], heading)
			} else {
				b.openChapter(m[2], heading)
			}
			continue
		}
		para = append(para, trimmed)
	}
	flush()

	return &types.SourceDocument{Identifier: id, Units: b.units}
}

// textBuilder assembles the unit tree; book and chapter index the open
// units, or are -1.
type textBuilder struct {
	units   []types.Unit
	book    int
	chapter int
}

func (b *textBuilder) openBook(id, heading string) {
	b.units = append(b.units, types.Unit{Kind: types.UnitBook, ID: id, Heading: heading})
	b.book = len(b.units) - 1
	b.chapter = -1
}

func (b *textBuilder) openChapter(id, heading string) {
	u := types.Unit{Kind: types.UnitChapter, ID: id, Heading: heading}
	if b.book >= 0 {
		bk := &b.units[b.book]
		bk.Children = append(bk.Children, u)
		b.chapter = len(bk.Children) - 1
		return
	}
	b.units = append(b.units, u)
	b.chapter = len(b.units) - 1
}

func (b *textBuilder) paragraph(text string) {
	u := types.Unit{Kind: types.UnitParagraph, Text: text}
	var parent *[]types.Unit
	switch {
	case b.book >= 0 && b.chapter >= 0:
		parent = &b.units[b.book].Children[b.chapter].Children
	case b.chapter >= 0:
		parent = &b.units[b.chapter].Children
	case b.book >= 0:
		parent = &b.units[b.book].Children
	default:
		parent = &b.units
	}
	*parent = append(*parent, u)
}
