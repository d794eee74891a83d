// Copyright Szymon Zygula, 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/szymon-zygula/egrapsa/internal/cache"
	"github.com/szymon-zygula/egrapsa/internal/logging"
	"github.com/szymon-zygula/egrapsa/internal/pipeline"
	"github.com/szymon-zygula/egrapsa/internal/source"
	"github.com/szymon-zygula/egrapsa/internal/style"
	"github.com/szymon-zygula/egrapsa/internal/texengine"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <work-id>",
	Short: "Typeset one work as LaTeX",
	Long: `Convert fetches a work, applies the style rules and writes LaTeX. The
work is a CTS URN (e.g. urn:cts:greekLit:tlg0012.tlg001.perseus-grc2) or a
local TEI XML or plain-text file. Nothing is written if any stage fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	addPipelineFlags(convertCmd)
	convertCmd.Flags().StringP("output", "o", "", "output .tex path (default: derived from the work id)")
	convertCmd.Flags().Bool("pdf", false, "compile the output to PDF with latexmk, xelatex or lualatex")

	rootCmd.AddCommand(convertCmd)
}

// addPipelineFlags registers the flags shared by convert and edition.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("style", "", "style ruleset file (default: built-in style)")
	cmd.Flags().Int("workers", 0, "chunks styled concurrently (default GOMAXPROCS)")
	cmd.Flags().Bool("fragment", false, "write a body fragment instead of a complete document")
	cmd.Flags().Bool("no-cache", false, "bypass the source cache")
}

func runConvert(cmd *cobra.Command, args []string) error {
	id := args[0]
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = outputName(id)
	}

	p, closeFn, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	wantPDF, _ := cmd.Flags().GetBool("pdf")
	wantPDF = wantPDF || p.Config.Output.PDF
	if wantPDF && !p.Config.Output.Standalone {
		return &types.ConfigError{Message: "--pdf needs a complete document; drop --fragment"}
	}

	if _, err := p.Convert(cmd.Context(), id, out); err != nil {
		return err
	}
	if wantPDF {
		return compilePDF(cmd.Context(), out)
	}
	return nil
}

// newPipeline assembles a pipeline from configuration and flags. The
// returned func releases the source cache.
func newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if s, _ := cmd.Flags().GetString("style"); s != "" {
		cfg.StylePath = s
	}
	if w, _ := cmd.Flags().GetInt("workers"); w > 0 {
		cfg.Workers = w
	}
	if f, _ := cmd.Flags().GetBool("fragment"); f {
		cfg.Output.Standalone = false
	}

	rs := style.Default()
	if cfg.StylePath != "" {
		if rs, err = style.Load(cfg.StylePath); err != nil {
			return nil, nil, err
		}
	}

	log := logging.FromContext(cmd.Context())
	router := source.New(cfg.Source, nil)
	closeFn := func() {}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache && cfg.Source.CacheDir != "" {
		store, err := cache.Open(cfg.Source.CacheDir)
		if err != nil {
			log.Warn("source cache unavailable", "dir", cfg.Source.CacheDir, "error", err)
		} else {
			router.Cache = store
			closeFn = func() { store.Close() }
		}
	}

	return &pipeline.Pipeline{
		Fetcher: router,
		Style:   rs,
		Config:  cfg,
		Out:     os.Stdout,
	}, closeFn, nil
}

// outputName derives a .tex file name from a work identifier: the last
// URN component or the base name of a path.
func outputName(id string) string {
	name := filepath.Base(id)
	if source.IsCTS(id) {
		name = id[strings.LastIndex(id, ":")+1:]
	} else {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if name == "" || name == "." {
		name = "egrapsa"
	}
	return name + ".tex"
}

// compilePDF typesets texPath next to itself. Engine output is shown only
// when compilation fails.
func compilePDF(ctx context.Context, texPath string) error {
	eng, err := texengine.Detect()
	if err != nil {
		return err
	}
	var engineLog bytes.Buffer
	pdf, err := eng.Compile(ctx, texPath, filepath.Dir(texPath), &engineLog)
	if err != nil {
		os.Stderr.Write(engineLog.Bytes())
		return err
	}
	fmt.Printf("compiled:  %s -> %s (%s)\n", texPath, pdf, eng.Name())
	return nil
}
