// Copyright Szymon Zygula, 2026. All rights reserved.

package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szymon-zygula/egrapsa/internal/segment"
	"github.com/szymon-zygula/egrapsa/internal/style"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

func positions(st types.StyledToken, k types.DecorationKind) []int {
	var out []int
	for _, d := range st.Decorations {
		if d.Kind == k {
			out = append(out, d.Pos)
		}
	}
	return out
}

func styleWords(t *testing.T, rs *style.RuleSet, text string) []types.StyledToken {
	t.Helper()
	toks, err := segment.Text(text, "1")
	require.NoError(t, err)
	var words []types.StyledToken
	for _, st := range Apply(toks, rs) {
		if st.IsWord() {
			words = append(words, st)
		}
	}
	return words
}

func TestLongSDefaultStyle(t *testing.T) {
	rs := style.Default()
	tests := []struct {
		word string
		want []int
	}{
		{"glass", nil},             // s before s, then word-final
		{"such", []int{0}},         // s before u
		{"success", []int{0}},      // s before u; s before s; final s
		{"himself", []int{3}},      // s before e
		{"misfortune", nil},        // s before f
		{"Ss", nil},                // after initial capital, and final
		{"Isaac", nil},             // after initial capital
		{"mis-take", nil},          // s before hyphen
		{"wisdom", []int{2}},       // s before d
		{"shews", nil},             // s before h; final s
		{"Gospel", []int{2}},       // capital is not immediately before
		{"sister", []int{0, 2}},    // both medial
		{"Moses", []int{2}},        // medial, then final
		{"HOUSES", nil},            // capitals are never decorated
		{"s", nil},                 // single letter is word-final
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			words := styleWords(t, rs, tt.word)
			require.Len(t, words, 1)
			assert.Equal(t, tt.want, positions(words[0], types.DecorLongS))
			assert.Equal(t, tt.word, words[0].Text, "original text is preserved")
		})
	}
}

func TestLongSTotality(t *testing.T) {
	rs := style.Default()
	exceptions := "sfbhk-"
	text := "These sisters seldom suspected Isaac's misfortunes; yet hasty ships passed Sussex, bishops' horses, asks."
	for _, w := range styleWords(t, rs, text) {
		runes := []rune(w.Text)
		decorated := make(map[int]bool)
		for _, p := range positions(w, types.DecorLongS) {
			decorated[p] = true
		}
		for i, r := range runes {
			if r != 's' {
				assert.False(t, decorated[i], "%s@%d is not an s", w.Text, i)
				continue
			}
			final := i == len(runes)-1
			beforeException := !final && strings.ContainsRune(exceptions, runes[i+1])
			afterInitialCapital := i == 1 && runes[0] >= 'A' && runes[0] <= 'Z'
			exempt := final || beforeException || afterInitialCapital
			assert.Equal(t, !exempt, decorated[i], "%s@%d", w.Text, i)
		}
	}
}

func TestLigatures(t *testing.T) {
	rs := style.Default()
	tests := []struct {
		word  string
		pairs []string
	}{
		{"Caesar", []string{"ae"}},
		{"fact", []string{"ct"}},
		{"first", []string{"st"}},
		{"aeeae", []string{"ae", "ae"}},
		{"aet", []string{"ae"}},
		{"Aeneas", nil}, // "Ae" is not a configured pair
		{"AEGEAN", []string{"AE"}},
		{"foetus", []string{"oe"}},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			words := styleWords(t, rs, tt.word)
			require.Len(t, words, 1)
			var got []string
			for _, d := range words[0].Decorations {
				if d.Kind == types.DecorLigature {
					got = append(got, d.Pair)
				}
			}
			assert.Equal(t, tt.pairs, got)
		})
	}
}

func TestLigaturesDoNotOverlap(t *testing.T) {
	rs, err := style.Parse([]byte(`rules:
  ligature:
    - {id: ab, pair: ab, condition: always, action: ligature}
    - {id: bc, pair: bc, condition: always, action: ligature}
`), "overlap.yaml")
	require.NoError(t, err)

	words := styleWords(t, rs, "abc")
	require.Len(t, words, 1)
	require.Len(t, words[0].Decorations, 1)
	assert.Equal(t, "ab", words[0].Decorations[0].Pair)
}

func TestLigatureConditionsAreEvaluated(t *testing.T) {
	rs, err := style.Parse([]byte(`rules:
  ligature:
    - {id: no-final-st, pair: st, condition: word_end, action: keep}
    - {id: st, pair: st, condition: always, action: ligature}
`), "cond.yaml")
	require.NoError(t, err)

	words := styleWords(t, rs, "first stone")
	require.Len(t, words, 2)
	assert.Empty(t, words[0].Decorations, "word-final st is kept apart")
	assert.Equal(t, []int{0}, positions(words[1], types.DecorLigature))
}

func TestOrnamentAndDropCap(t *testing.T) {
	rs := style.Default()
	toks := []types.Token{
		types.Break(types.UnitBook, "1", "Book I"),
		types.Break(types.UnitLine, "1", ""),
		types.Punct("“"),
		types.Word("Sing"),
		types.Space(1),
		types.Word("goddess"),
		types.Break(types.UnitChapter, "1.2", ""),
		types.Word("Thus"),
		types.Break(types.UnitParagraph, "p", ""),
		types.Word("And"),
	}
	out := Apply(toks, rs)

	assert.Equal(t, types.UnitBook, out[0].Ornament())
	assert.Empty(t, out[1].Decorations, "line breaks carry no ornament")
	assert.Empty(t, out[2].Decorations, "punctuation is skipped by the drop cap")
	assert.Equal(t, []int{0}, positions(out[3], types.DecorDropCap))
	assert.Empty(t, positions(out[5], types.DecorDropCap), "drop cap only on the first word")
	assert.Equal(t, types.UnitChapter, out[6].Ornament())
	assert.Equal(t, []int{0}, positions(out[7], types.DecorDropCap))
	assert.Empty(t, out[8].Decorations)
	assert.Empty(t, out[9].Decorations)
}

func TestDropCapPendingReplacedBySectionBreak(t *testing.T) {
	rs, err := style.Parse([]byte(`rules:
  ornament:
    - {id: book, condition: break book, action: drop_cap}
    - {id: chapter, condition: break chapter, action: none}
`), "dc.yaml")
	require.NoError(t, err)

	out := Apply([]types.Token{
		types.Break(types.UnitBook, "1", ""),
		types.Break(types.UnitChapter, "1.1", ""),
		types.Word("Arma"),
	}, rs)
	assert.Empty(t, out[2].Decorations, "the chapter rule decides for the chapter's first word")
}

func TestEmptyRuleSetDecoratesNothing(t *testing.T) {
	rs, err := style.New("empty", nil, style.Render{})
	require.NoError(t, err)
	toks, err := segment.Text("Caesar possessed first things", "1")
	require.NoError(t, err)
	for _, st := range Apply(append([]types.Token{types.Break(types.UnitBook, "1", "")}, toks...), rs) {
		assert.Empty(t, st.Decorations)
	}
}

func TestLineStartCondition(t *testing.T) {
	rs, err := style.Parse([]byte(`rules:
  long_s:
    - {id: line-initial, condition: line_start and word_start, action: keep}
    - {id: medial, condition: not word_end, action: long_s}
`), "ls.yaml")
	require.NoError(t, err)

	out := Apply([]types.Token{
		types.Break(types.UnitLine, "1", ""),
		types.Word("so"),
		types.Space(1),
		types.Word("so"),
	}, rs)
	assert.Empty(t, positions(out[1], types.DecorLongS))
	assert.Equal(t, []int{0}, positions(out[3], types.DecorLongS))
}

func sampleTokens(t *testing.T) []types.Token {
	t.Helper()
	doc := &types.SourceDocument{Units: []types.Unit{
		{Kind: types.UnitBook, ID: "1", Heading: "Book I", Children: []types.Unit{
			{Kind: types.UnitChapter, ID: "1.1", Text: "Sing, goddess, the wrath of Achilles."},
			{Kind: types.UnitChapter, ID: "1.2", Text: "Whose wrath sent countless souls."},
		}},
		{Kind: types.UnitBook, ID: "2", Children: []types.Unit{
			{Kind: types.UnitChapter, ID: "2.1", Children: []types.Unit{
				{Kind: types.UnitLine, ID: "1", Text: "Now the other gods"},
				{Kind: types.UnitLine, ID: "2", Text: "slept the whole night"},
			}},
		}},
	}}
	toks, err := segment.Segment(doc)
	require.NoError(t, err)
	return toks
}

func TestChunkInvariance(t *testing.T) {
	rs := style.Default()
	toks := sampleTokens(t)
	whole := Apply(toks, rs)

	var chunked []types.StyledToken
	start := 0
	for i := 1; i <= len(toks); i++ {
		if i == len(toks) || toks[i].IsSectionBreak() {
			chunked = append(chunked, Apply(toks[start:i], rs)...)
			start = i
		}
	}
	assert.Equal(t, whole, chunked)
}

func TestApplyDeterministic(t *testing.T) {
	rs := style.Default()
	toks := sampleTokens(t)
	assert.Equal(t, Apply(toks, rs), Apply(toks, rs))
}

func TestApplyPreservesOrder(t *testing.T) {
	toks := sampleTokens(t)
	out := Apply(toks, style.Default())
	require.Len(t, out, len(toks))
	for i := range toks {
		assert.Equal(t, toks[i], out[i].Token)
	}
}
