// Copyright Szymon Zygula, 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szymon-zygula/egrapsa/internal/engine"
	"github.com/szymon-zygula/egrapsa/internal/segment"
	"github.com/szymon-zygula/egrapsa/internal/style"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// mapFetcher serves documents from memory.
type mapFetcher map[string]*types.SourceDocument

func (m mapFetcher) Fetch(_ context.Context, id string) (*types.SourceDocument, error) {
	doc, ok := m[id]
	if !ok {
		return nil, &types.FetchError{Identifier: id, Err: errors.New("not found")}
	}
	return doc, nil
}

func iliad() *types.SourceDocument {
	return &types.SourceDocument{
		Identifier: "urn:cts:greekLit:tlg0012.tlg001.perseus-eng1",
		Title:      "Iliad",
		Author:     "Homer",
		Language:   "eng",
		Units: []types.Unit{
			{Kind: types.UnitBook, ID: "1", Heading: "Book I", Children: []types.Unit{
				{Kind: types.UnitChapter, ID: "1.1", Children: []types.Unit{
					{Kind: types.UnitParagraph, ID: "1", Text: "Sing, O goddess, the anger of Achilles son of Peleus, that brought countless ills upon the Achaeans."},
					{Kind: types.UnitParagraph, ID: "2", Text: "Many a brave soul did it send hurrying down to Hades, and many a hero did it yield a prey to dogs and vultures."},
				}},
				{Kind: types.UnitChapter, ID: "1.2", Text: "And which of the gods was it that set them on to quarrel?"},
			}},
			{Kind: types.UnitBook, ID: "2", Heading: "Book II", Children: []types.Unit{
				{Kind: types.UnitLine, ID: "1", Text: "Now the other gods and the armed warriors"},
				{Kind: types.UnitLine, ID: "2", Text: "slept soundly the whole night through,"},
				{Kind: types.UnitLine, ID: "3", Text: "but Jove was wakeful, for he was thinking"},
				{Kind: types.UnitLine, ID: "4", Text: "how he should do honour to Achilles."},
				{Kind: types.UnitLine, ID: "5", Text: "In the end he deemed it best to send a lying dream."},
			}},
		},
	}
}

func TestChunks(t *testing.T) {
	chunks := Chunks(iliad().Units)
	var got []string
	for _, c := range chunks {
		ids := make([]string, len(c))
		for i, u := range c {
			assert.Nil(t, u.Children)
			ids[i] = string(u.Kind) + ":" + u.ID
		}
		got = append(got, strings.Join(ids, " "))
	}
	assert.Equal(t, []string{
		"book:1",
		"chapter:1.1 paragraph:1 paragraph:2",
		"chapter:1.2",
		"book:2 line:1 line:2 line:3 line:4 line:5",
	}, got)
}

func TestChunksLeadingNonSectioningUnits(t *testing.T) {
	chunks := Chunks([]types.Unit{
		{Kind: types.UnitParagraph, ID: "preface"},
		{Kind: types.UnitChapter, ID: "1"},
	})
	require.Len(t, chunks, 2)
	assert.Equal(t, "preface", chunks[0][0].ID)
	assert.Empty(t, Chunks(nil))
}

func TestStyleChunkInvariance(t *testing.T) {
	doc := iliad()
	rs := style.Default()
	toks, err := segment.Segment(doc)
	require.NoError(t, err)
	whole := engine.Apply(toks, rs)

	for _, workers := range []int{0, 1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			got, err := Style(context.Background(), Chunks(doc.Units), rs, workers)
			require.NoError(t, err)
			assert.Equal(t, whole, got)
		})
	}
}

func TestStyleReportsEarliestChunkError(t *testing.T) {
	units := []types.Unit{
		{Kind: types.UnitChapter, ID: "1", Text: "fine"},
		{Kind: types.UnitChapter, ID: "2", Text: "bad\xff"},
		{Kind: types.UnitChapter, ID: "3", Text: "worse\xfe"},
	}
	_, err := Style(context.Background(), Chunks(units), style.Default(), 3)
	require.Error(t, err)
	var de *types.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "2", de.Unit)
	assert.Equal(t, "decode", types.Kind(err))
}

func TestStyleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Style(ctx, Chunks(iliad().Units), style.Default(), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func newPipeline(out *bytes.Buffer, docs ...*types.SourceDocument) *Pipeline {
	f := mapFetcher{}
	for _, d := range docs {
		f[d.Identifier] = d
	}
	return &Pipeline{
		Fetcher: f,
		Style:   style.Default(),
		Config: types.PipelineConfig{
			Layout:  types.LayoutConfig{WordsPerPage: 20, WordsPerLine: 6},
			Workers: 4,
		},
		Out: out,
	}
}

func TestRenderDeterministic(t *testing.T) {
	p := newPipeline(nil)
	a, err := p.Render(context.Background(), iliad())
	require.NoError(t, err)
	p.Config.Workers = 1
	b, err := p.Render(context.Background(), iliad())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 4, a.Chunks)
	assert.Positive(t, a.Stats.Catchwords)
	assert.Contains(t, a.Body, `\chapter*{Book I}`)
	assert.Contains(t, a.Body, `\alignedmarginpar{5}`)
}

func TestConvert(t *testing.T) {
	var out bytes.Buffer
	doc := iliad()
	p := newPipeline(&out, doc)
	p.Config.Output.Standalone = true
	path := filepath.Join(t.TempDir(), "iliad.tex")

	res, err := p.Convert(context.Background(), doc.Identifier, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `\title{Iliad}`)
	assert.Contains(t, string(data), `\usepackage[english]{babel}`)
	assert.Contains(t, string(data), res.Body)
	assert.Contains(t, out.String(), "converted: "+doc.Identifier)
}

func TestConvertFailureWritesNothing(t *testing.T) {
	bad := &types.SourceDocument{Identifier: "bad", Units: []types.Unit{{Kind: types.UnitParagraph, ID: "1", Text: "\xff"}}}
	p := newPipeline(nil, bad)
	dir := t.TempDir()

	_, err := p.Convert(context.Background(), "missing", filepath.Join(dir, "a.tex"))
	assert.Equal(t, "fetch", types.Kind(err))

	_, err = p.Convert(context.Background(), "bad", filepath.Join(dir, "b.tex"))
	assert.Equal(t, "decode", types.Kind(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConvertEmitError(t *testing.T) {
	rs, err := style.Parse([]byte(`rules:
  long_s:
    - {id: all, condition: always, action: long_s}
`), "no-render.yaml")
	require.NoError(t, err)
	doc := iliad()
	p := newPipeline(nil, doc)
	p.Style = rs
	path := filepath.Join(t.TempDir(), "out.tex")

	_, err = p.Convert(context.Background(), doc.Identifier, path)
	assert.ErrorIs(t, err, types.ErrEmit)
	assert.NoFileExists(t, path)
}

func TestEdition(t *testing.T) {
	var out bytes.Buffer
	doc := iliad()
	second := &types.SourceDocument{Identifier: "local/odyssey.txt", Title: "Odyssey", Units: []types.Unit{
		{Kind: types.UnitBook, ID: "1", Text: "Tell me, O muse, of that ingenious hero."},
	}}
	p := newPipeline(&out, doc, second)
	path := filepath.Join(t.TempDir(), "homer.tex")

	ed := types.Edition{Name: "homer", Title: "Homer", Works: []types.WorkInfo{
		{Title: "The Iliad", AltTitle: "Ἰλιάς", Identifier: doc.Identifier},
		{Identifier: second.Identifier},
	}}
	batch, err := p.Edition(context.Background(), ed, path)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Converted)
	assert.False(t, batch.HasFailures())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	iliadAt := strings.Index(text, `\part*{The Iliad}`)
	odysseyAt := strings.Index(text, `\part*{Odyssey}`)
	assert.GreaterOrEqual(t, iliadAt, 0)
	assert.Greater(t, odysseyAt, iliadAt)
}

func TestEditionFailureWritesNothing(t *testing.T) {
	var out bytes.Buffer
	doc := iliad()
	p := newPipeline(&out, doc)
	path := filepath.Join(t.TempDir(), "homer.tex")

	ed := types.Edition{Name: "homer", Works: []types.WorkInfo{
		{Identifier: doc.Identifier},
		{Identifier: "urn:cts:greekLit:tlg0012.tlg002"},
	}}
	batch, err := p.Edition(context.Background(), ed, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFetch)
	assert.Equal(t, 1, batch.Converted)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, 2, batch.Total())
	assert.NoFileExists(t, path)
	assert.Contains(t, out.String(), "failed:    urn:cts:greekLit:tlg0012.tlg002")
}

func TestBabelLanguage(t *testing.T) {
	assert.Equal(t, "greek.polutoniko", BabelLanguage("grc"))
	assert.Equal(t, "latin", BabelLanguage("LAT"))
	assert.Equal(t, "", BabelLanguage("xx"))
}
