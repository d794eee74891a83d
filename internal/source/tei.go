// Copyright Szymon Zygula, 2026. All rights reserved.

package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// TEI documents use a default namespace, so elements are matched by local
// name.
var (
	bodyExpr   = xpath.MustCompile(`//*[local-name()='text']/*[local-name()='body']`)
	titleExpr  = xpath.MustCompile(`//*[local-name()='titleStmt']/*[local-name()='title']`)
	authorExpr = xpath.MustCompile(`//*[local-name()='titleStmt']/*[local-name()='author']`)
)

// skipped elements contribute no text.
var skipped = map[string]bool{
	"note": true, "bibl": true, "del": true, "head": true, "milestone": true, "lb": true,
}

// ParseTEI builds a SourceDocument from a TEI document or a CTS
// GetPassage reply wrapping one.
//
// Textpart divs with subtype book or chapter become book and chapter
// units; other textparts (card, section, poem) become paragraph units
// holding their content. <l> elements are verse lines and <p> elements
// paragraphs. Unit identifiers come from the n attributes; nested div
// identifiers are dotted paths ("1.2").
func ParseTEI(data []byte, id string) (*types.SourceDocument, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	body := xmlquery.QuerySelector(root, bodyExpr)
	if body == nil {
		return nil, fmt.Errorf("no TEI body in %s", id)
	}

	doc := &types.SourceDocument{
		Identifier: id,
		Title:      textOf(xmlquery.QuerySelector(root, titleExpr)),
		Author:     textOf(xmlquery.QuerySelector(root, authorExpr)),
		Language:   language(body),
		Units:      teiUnits(body, ""),
	}
	if len(doc.Units) == 0 {
		return nil, fmt.Errorf("TEI body of %s holds no text units", id)
	}
	return doc, nil
}

func teiUnits(n *xmlquery.Node, prefix string) []types.Unit {
	var out []types.Unit
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "div":
			kind, ok := divKind(c)
			if !ok {
				out = append(out, teiUnits(c, prefix)...)
				continue
			}
			uid := attr(c, "n")
			if prefix != "" && uid != "" {
				uid = prefix + "." + uid
			}
			childPrefix := uid
			if childPrefix == "" {
				childPrefix = prefix
			}
			out = append(out, types.Unit{
				Kind:     kind,
				ID:       uid,
				Heading:  heading(c),
				Children: teiUnits(c, childPrefix),
			})
		case "l":
			out = append(out, types.Unit{Kind: types.UnitLine, ID: attr(c, "n"), Text: normalizedText(c)})
		case "p", "ab":
			out = append(out, types.Unit{Kind: types.UnitParagraph, ID: attr(c, "n"), Text: normalizedText(c)})
		case "lg", "sp", "quote", "q", "floatingText", "group":
			out = append(out, teiUnits(c, prefix)...)
		}
	}
	return out
}

// divKind maps a div to a unit kind. Edition and translation wrappers
// report false and are flattened into their parent.
func divKind(n *xmlquery.Node) (types.UnitKind, bool) {
	switch strings.ToLower(attr(n, "subtype")) {
	case "book":
		return types.UnitBook, true
	case "chapter":
		return types.UnitChapter, true
	}
	if attr(n, "type") == "textpart" {
		return types.UnitParagraph, true
	}
	return "", false
}

func heading(n *xmlquery.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == "head" {
			return textOf(c)
		}
	}
	return ""
}

// attr returns the value of the attribute with the given local name.
func attr(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// language returns the first xml:lang found on body, its ancestors or its
// descendant divs.
func language(body *xmlquery.Node) string {
	for n := body; n != nil; n = n.Parent {
		if l := attr(n, "lang"); l != "" {
			return l
		}
	}
	var find func(*xmlquery.Node) string
	find = func(n *xmlquery.Node) string {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode || c.Data != "div" {
				continue
			}
			if l := attr(c, "lang"); l != "" {
				return l
			}
			if l := find(c); l != "" {
				return l
			}
		}
		return ""
	}
	return find(body)
}

func textOf(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(n.InnerText()), " ")
}

// normalizedText collects the text of n without editorial apparatus and
// collapses whitespace.
func normalizedText(n *xmlquery.Node) string {
	var b strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				b.WriteString(c.Data)
			case xmlquery.ElementNode:
				if !skipped[c.Data] {
					walk(c)
				}
			}
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
