// Copyright Szymon Zygula, 2026. All rights reserved.

// Package pipeline drives a conversion end to end: fetch, segment and
// style in parallel chunks, estimate boundaries, emit LaTeX and commit the
// output file.
//
// Documents are partitioned only before chapter and book units. The rule
// engine resets its state at those breaks, so the concatenated chunk
// results equal a single pass over the whole document.
//
// See docs/ARCHITECTURE.md § Pipeline.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/szymon-zygula/egrapsa/internal/emit"
	"github.com/szymon-zygula/egrapsa/internal/engine"
	"github.com/szymon-zygula/egrapsa/internal/logging"
	"github.com/szymon-zygula/egrapsa/internal/paginate"
	"github.com/szymon-zygula/egrapsa/internal/segment"
	"github.com/szymon-zygula/egrapsa/internal/style"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// Fetcher retrieves a source document by identifier.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*types.SourceDocument, error)
}

// Pipeline holds the immutable inputs shared by every conversion.
type Pipeline struct {
	Fetcher Fetcher
	Style   *style.RuleSet
	Config  types.PipelineConfig

	// Out receives one status line per converted work.
	Out io.Writer
}

// Result describes one converted work.
type Result struct {
	Identifier string
	Body       string
	Chunks     int
	Stats      paginate.Stats
}

// Chunks flattens the unit tree in document order and splits it before
// every chapter and book unit. Units in the result carry no children;
// segmenting the chunks in order yields exactly the token stream of the
// whole tree.
func Chunks(units []types.Unit) [][]types.Unit {
	var flat []types.Unit
	var walk func([]types.Unit)
	walk = func(us []types.Unit) {
		for _, u := range us {
			shallow := u
			shallow.Children = nil
			flat = append(flat, shallow)
			walk(u.Children)
		}
	}
	walk(units)

	var chunks [][]types.Unit
	start := 0
	for i := 1; i <= len(flat); i++ {
		if i == len(flat) || flat[i].Kind.Sectioning() {
			chunks = append(chunks, flat[start:i])
			start = i
		}
	}
	return chunks
}

// Style segments and styles chunks on at most workers goroutines and
// concatenates the results in chunk order. When several chunks fail, the
// error of the earliest one is returned.
func Style(ctx context.Context, chunks [][]types.Unit, rs *style.RuleSet, workers int) ([]types.StyledToken, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}
	log := logging.FromContext(ctx)

	results := make([][]types.StyledToken, len(chunks))
	errs := make([]error, len(chunks))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				toks, err := segment.Units(chunks[i])
				if err != nil {
					errs[i] = err
					continue
				}
				results[i] = engine.Apply(toks, rs)
				log.Debug("styled chunk", "index", i, "units", len(chunks[i]), "tokens", len(toks))
			}
		}()
	}
	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	n := 0
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		n += len(results[i])
	}
	out := make([]types.StyledToken, 0, n)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// Render converts a fetched document into a LaTeX body.
func (p *Pipeline) Render(ctx context.Context, doc *types.SourceDocument) (Result, error) {
	chunks := Chunks(doc.Units)
	styled, err := Style(ctx, chunks, p.Style, p.Config.Workers)
	if err != nil {
		return Result{}, err
	}
	elems := paginate.Estimate(styled, p.Config.Layout, p.Style)
	body, err := emit.Emit(elems, p.Style)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Identifier: doc.Identifier,
		Body:       body,
		Chunks:     len(chunks),
		Stats:      paginate.Summarize(elems),
	}, nil
}

// Convert fetches and renders one work and writes it to outPath. Nothing
// is written unless every stage succeeds.
func (p *Pipeline) Convert(ctx context.Context, id, outPath string) (Result, error) {
	log := logging.FromContext(ctx).With("work", id)

	doc, err := p.fetch(ctx, id)
	if err != nil {
		return Result{}, err
	}
	log.Info("fetched", "title", doc.Title, "words", doc.WordCount())

	res, err := p.Render(ctx, doc)
	if err != nil {
		return Result{}, fmt.Errorf("converting %s: %w", id, err)
	}

	content := res.Body
	if p.Config.Output.Standalone {
		content = emit.Document(res.Body, p.meta(doc.Title, doc.Author, doc.Language))
	}
	if err := emit.WriteFile(outPath, content); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", outPath, err)
	}

	p.status("converted: %s -> %s (%d words, ~%d pages, %d catchwords)\n",
		id, outPath, res.Stats.Words, res.Stats.Pages, res.Stats.Catchwords)
	return res, nil
}

// BatchResult summarises an edition run.
type BatchResult struct {
	Converted int
	Failed    int
}

// Total returns the number of works processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any work failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Edition converts every work of ed in order into a single document at
// outPath. All works are attempted; if any fails, nothing is written and
// the first failure is returned.
func (p *Pipeline) Edition(ctx context.Context, ed types.Edition, outPath string) (BatchResult, error) {
	log := logging.FromContext(ctx).With("edition", ed.Name)

	var batch BatchResult
	var firstErr error
	var body strings.Builder

	for _, w := range ed.Works {
		doc, err := p.fetch(ctx, w.Identifier)
		if err == nil {
			var res Result
			res, err = p.Render(ctx, doc)
			if err == nil {
				title := w.Title
				if title == "" {
					title = doc.Title
				}
				body.WriteString(emit.WorkTitle(p.Style, title, w.AltTitle))
				body.WriteString(res.Body)
				body.WriteString("\n")
				batch.Converted++
				p.status("converted: %s (%d words, ~%d pages)\n", w.Identifier, res.Stats.Words, res.Stats.Pages)
				continue
			}
			err = fmt.Errorf("converting %s: %w", w.Identifier, err)
		}
		batch.Failed++
		p.status("failed:    %s (%v)\n", w.Identifier, err)
		log.Error("work failed", "work", w.Identifier, "kind", types.Kind(err), "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return batch, fmt.Errorf("edition %s: %d of %d works failed: %w", ed.Name, batch.Failed, batch.Total(), firstErr)
	}

	content := body.String()
	if p.Config.Output.Standalone {
		content = emit.Document(content, p.meta(ed.Title, ed.Author, ed.Language))
	}
	if err := emit.WriteFile(outPath, content); err != nil {
		return batch, fmt.Errorf("writing %s: %w", outPath, err)
	}
	p.status("\nEdition %s: %d works -> %s\n", ed.Name, batch.Converted, outPath)
	return batch, nil
}

func (p *Pipeline) fetch(ctx context.Context, id string) (*types.SourceDocument, error) {
	if p.Fetcher == nil {
		return nil, &types.FetchError{Identifier: id, Err: fmt.Errorf("no source configured")}
	}
	doc, err := p.Fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// meta fills the title page from the output config, falling back to the
// values supplied by the source.
func (p *Pipeline) meta(title, author, language string) emit.Meta {
	out := p.Config.Output
	m := emit.Meta{Title: out.Title, Author: out.Author, Language: out.Language}
	if m.Title == "" {
		m.Title = title
	}
	if m.Author == "" {
		m.Author = author
	}
	if m.Language == "" {
		m.Language = BabelLanguage(language)
	}
	return m
}

func (p *Pipeline) status(format string, args ...any) {
	if p.Out != nil {
		fmt.Fprintf(p.Out, format, args...)
	}
}

// babelLanguages maps ISO 639 codes used by text repositories to babel
// options.
var babelLanguages = map[string]string{
	"grc": "greek.polutoniko",
	"el":  "greek",
	"lat": "latin",
	"la":  "latin",
	"eng": "english",
	"en":  "english",
	"fre": "french",
	"fra": "french",
	"ger": "ngerman",
	"deu": "ngerman",
	"ita": "italian",
}

// BabelLanguage returns the babel option for an ISO 639 code. Unknown codes
// yield "" and babel is not loaded.
func BabelLanguage(code string) string {
	return babelLanguages[strings.ToLower(code)]
}
