// Copyright Szymon Zygula, 2026. All rights reserved.

package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Meta describes the title page of a standalone document.
type Meta struct {
	Title  string
	Author string
	// Language is the babel option, e.g. "greek.polutoniko" or "latin".
	Language string
}

const preamble = `\documentclass[a5paper,12pt]{book}

\usepackage{geometry}
\geometry{a5paper}
\usepackage{scrextend}
\usepackage{marginnote}
\usepackage{fontspec}
\usepackage{lettrine}
%s
\newcommand{\alignedmarginpar}[1]{%%
    \Ifthispageodd{%%
        \marginpar{\raggedright\small #1}%%
    }{%%
        \marginpar{\raggedleft\small #1}%%
    }%%
}
\newcommand{\ctlig}{{\addfontfeatures{Ligatures=Historic}ct}}
\newcommand{\stlig}{{\addfontfeatures{Ligatures=Historic}st}}
\newcommand{\longstlig}{{\addfontfeatures{Ligatures=Historic}ſt}}
\newcommand{\catchword}[1]{\nopagebreak\hspace*{\fill}\mbox{#1}}
\newcommand{\chapterornament}{\begin{center}*\quad*\quad*\end{center}}
\newcommand{\bookornament}{\begin{center}\rule{0.4\textwidth}{0.4pt}\end{center}}

\date{}
`

// Document wraps an emitted body in a complete LaTeX document.
func Document(body string, meta Meta) string {
	var b strings.Builder

	babel := ""
	if meta.Language != "" {
		babel = fmt.Sprintf("\\usepackage[%s]{babel}\n", meta.Language)
	}
	fmt.Fprintf(&b, preamble, babel)

	if meta.Author != "" {
		fmt.Fprintf(&b, "\\author{%s}\n", Escape(meta.Author))
	}
	if meta.Title != "" {
		fmt.Fprintf(&b, "\\title{%s}\n", Escape(meta.Title))
	}
	b.WriteString("\\setcounter{secnumdepth}{0}\n\n\\begin{document}\n")
	if meta.Title != "" {
		b.WriteString("\\maketitle\n")
	}
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n\\end{document}\n")
	return b.String()
}

// WriteFile writes content to path through a temporary file in the same
// directory, so path either holds the complete output or is untouched.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".egrapsa-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.WriteString(content)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing output: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting output permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
