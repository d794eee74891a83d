// Copyright Szymon Zygula, 2026. All rights reserved.

package segment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// shape renders tokens compactly for comparison: words as-is, punctuation
// quoted, whitespace as _n or /n, breaks as [kind:id].
func shape(toks []types.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		switch t.Kind {
		case types.TokenWord:
			out[i] = t.Text
		case types.TokenPunctuation:
			out[i] = "'" + t.Text + "'"
		case types.TokenWhitespace:
			if t.Space == types.NewlineRun {
				out[i] = "/" + string(rune('0'+t.RunLength))
			} else {
				out[i] = "_" + string(rune('0'+t.RunLength))
			}
		case types.TokenBreak:
			out[i] = "[" + string(t.Break) + ":" + t.UnitID + "]"
		}
	}
	return out
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single word", "glass", []string{"glass"}},
		{"punctuation", "Sing, O goddess!", []string{"Sing", "','", "_1", "O", "_1", "goddess", "'!'"}},
		{"whitespace run collapses", "a   b", []string{"a", "_3", "b"}},
		{"newline run", "a\n\nb", []string{"a", "/2", "b"}},
		{"mixed run keeps length", "a \n b", []string{"a", "/3", "b"}},
		{"internal hyphen", "to-day", []string{"to-day"}},
		{"trailing hyphen", "mis- take", []string{"mis", "'-'", "_1", "take"}},
		{"apostrophe", "o'er the", []string{"o'er", "_1", "the"}},
		{"leading quote", "'tis", []string{"'''", "tis"}},
		{"digits in words", "line 402", []string{"line", "_1", "402"}},
		{"greek", "μῆνιν ἄειδε", []string{"μῆνιν", "_1", "ἄειδε"}},
		{"reserved chars", "50% & $5", []string{"50", "'%'", "_1", "'&'", "_1", "'$'", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Text(tt.text, "1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, shape(toks))
		})
	}
}

func TestTextNormalizesToNFC(t *testing.T) {
	toks, err := Text("cafe\u0301", "1")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "caf\u00e9", toks[0].Text)
	assert.Len(t, []rune(toks[0].Text), 4)
}

func TestTextPositions(t *testing.T) {
	toks, err := Text("ab, cd", "7.3")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, types.Position{Unit: "7.3", Offset: 0}, toks[0].Pos)
	assert.Equal(t, types.Position{Unit: "7.3", Offset: 2}, toks[1].Pos)
	assert.Equal(t, types.Position{Unit: "7.3", Offset: 4}, toks[3].Pos)
}

func TestTextInvalidUTF8(t *testing.T) {
	_, err := Text("good \xff bad", "2.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDecode))

	var de *types.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "2.1", de.Unit)
	assert.Equal(t, 5, de.Offset)
}

func TestSegmentPreservesStructure(t *testing.T) {
	doc := &types.SourceDocument{
		Identifier: "urn:test",
		Units: []types.Unit{
			{Kind: types.UnitBook, ID: "1", Heading: "Book I", Children: []types.Unit{
				{Kind: types.UnitLine, ID: "1", Text: "Sing, goddess"},
				{Kind: types.UnitLine, ID: "2", Text: "the wrath"},
			}},
			{Kind: types.UnitBook, ID: "2", Children: []types.Unit{
				{Kind: types.UnitChapter, ID: "2.1", Text: "Thus"},
			}},
		},
	}

	toks, err := Segment(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"[book:1]", "[line:1]", "Sing", "','", "_1", "goddess",
		"[line:2]", "the", "_1", "wrath",
		"[book:2]", "[chapter:2.1]", "Thus",
	}, shape(toks))
	assert.Equal(t, "Book I", toks[0].Heading)
	assert.Equal(t, "", toks[10].Heading, "headings are never invented")
}

func TestSegmentDeterministic(t *testing.T) {
	doc := &types.SourceDocument{Units: []types.Unit{
		{Kind: types.UnitParagraph, ID: "p1", Text: "It was the best of times, it was the worst of times."},
	}}
	a, err := Segment(doc)
	require.NoError(t, err)
	b, err := Segment(doc)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSegmentDecodeErrorAborts(t *testing.T) {
	doc := &types.SourceDocument{Units: []types.Unit{
		{Kind: types.UnitChapter, ID: "1", Text: "fine"},
		{Kind: types.UnitChapter, ID: "2", Text: "bro\xc3ken"},
	}}
	toks, err := Segment(doc)
	assert.Nil(t, toks)
	var de *types.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "2", de.Unit)
	assert.Equal(t, 3, de.Offset)
}
