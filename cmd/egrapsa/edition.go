// Copyright Szymon Zygula, 2026. All rights reserved.

package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/szymon-zygula/egrapsa/internal/pipeline"
)

var editionCmd = &cobra.Command{
	Use:   "edition <edition.yaml>",
	Short: "Typeset every work of an edition into one document",
	Long: `Edition reads a YAML edition file listing works and typesets them in
order into a single LaTeX document, each under its work title. Every work
is attempted; if any fails the output file is not written.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdition,
}

func init() {
	addPipelineFlags(editionCmd)
	editionCmd.Flags().StringP("output", "o", "", "output .tex path (default: <edition name>.tex)")
	editionCmd.Flags().Bool("pdf", false, "compile the output to PDF with latexmk, xelatex or lualatex")

	rootCmd.AddCommand(editionCmd)
}

func runEdition(cmd *cobra.Command, args []string) error {
	ed, err := pipeline.LoadEdition(args[0])
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		base := filepath.Base(args[0])
		out = strings.TrimSuffix(base, filepath.Ext(base)) + ".tex"
	}

	p, closeFn, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := p.Edition(cmd.Context(), ed, out); err != nil {
		return err
	}
	if pdf, _ := cmd.Flags().GetBool("pdf"); (pdf || p.Config.Output.PDF) && p.Config.Output.Standalone {
		return compilePDF(cmd.Context(), out)
	}
	return nil
}
