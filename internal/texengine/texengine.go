// Copyright Szymon Zygula, 2026. All rights reserved.

// Package texengine detects a TeX engine on PATH and compiles emitted
// documents to PDF. The emitted preamble needs fontspec, so only Unicode
// engines qualify.
//
// See docs/ARCHITECTURE.md § TeX Engine.
package texengine

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	binLatexmk  = "latexmk"
	binXelatex  = "xelatex"
	binLualatex = "lualatex"
)

// Engine compiles a .tex file.
type Engine interface {
	// Name returns the engine binary name.
	Name() string

	// Available reports whether the binary exists on PATH and answers
	// --version.
	Available() bool

	// Compile typesets texPath into outDir and returns the PDF path.
	// Engine output is copied to log.
	Compile(ctx context.Context, texPath, outDir string, log io.Writer) (string, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunLogged(ctx context.Context, dir, name string, args []string, out io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunLogged(ctx context.Context, dir, name string, args []string, out io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// engine implements Engine for one binary. The engines differ only in
// the arguments that select the output directory and the number of runs;
// lettrine and marginnote settle after a second pass, which latexmk
// handles on its own.
type engine struct {
	bin  string
	args func(texFile, outDir string) []string
	runs int
	exec executor
}

func (e *engine) Name() string { return e.bin }

func (e *engine) Available() bool {
	if _, err := e.exec.LookPath(e.bin); err != nil {
		return false
	}
	return e.exec.RunSilent(e.bin, "--version") == nil
}

func (e *engine) Compile(ctx context.Context, texPath, outDir string, log io.Writer) (string, error) {
	if log == nil {
		log = io.Discard
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	dir, file := filepath.Split(texPath)
	if dir == "" {
		dir = "."
	}
	args := e.args(file, absOut)
	for i := 0; i < e.runs; i++ {
		if err := e.exec.RunLogged(ctx, dir, e.bin, args, log); err != nil {
			return "", fmt.Errorf("running %s on %s: %w", e.bin, texPath, err)
		}
	}
	return filepath.Join(absOut, strings.TrimSuffix(file, filepath.Ext(file))+".pdf"), nil
}

func newLatexmk(exec executor) *engine {
	return &engine{
		bin: binLatexmk,
		args: func(texFile, outDir string) []string {
			return []string{"-xelatex", "-interaction=nonstopmode", "-halt-on-error", "-outdir=" + outDir, texFile}
		},
		runs: 1,
		exec: exec,
	}
}

func newDirect(bin string, exec executor) *engine {
	return &engine{
		bin: bin,
		args: func(texFile, outDir string) []string {
			return []string{"-interaction=nonstopmode", "-halt-on-error", "-output-directory=" + outDir, texFile}
		},
		runs: 2,
		exec: exec,
	}
}

var defaultExec = &osExecutor{}

// Detect returns the first available engine, trying latexmk, then
// xelatex, then lualatex.
func Detect() (Engine, error) {
	return detect(defaultExec)
}

func detect(exec executor) (Engine, error) {
	candidates := []*engine{
		newLatexmk(exec),
		newDirect(binXelatex, exec),
		newDirect(binLualatex, exec),
	}
	for _, e := range candidates {
		if e.Available() {
			return e, nil
		}
	}
	return nil, fmt.Errorf(
		"no TeX engine available: none of %s, %s, %s found or operational",
		binLatexmk, binXelatex, binLualatex,
	)
}
