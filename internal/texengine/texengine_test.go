// Copyright Szymon Zygula, 2026. All rights reserved.

package texengine

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runErr        error
	calls         []call
}

type call struct {
	dir  string
	name string
	args []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunLogged(_ context.Context, dir, name string, args []string, out io.Writer) error {
	m.calls = append(m.calls, call{dir: dir, name: name, args: args})
	io.WriteString(out, "This is "+name+"\n")
	return m.runErr
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "latexmk preferred",
			exec: &mockExecutor{
				availableBins: map[string]bool{"latexmk": true, "xelatex": true},
				runnableCmds:  map[string]bool{"latexmk --version": true, "xelatex --version": true},
			},
			wantName: "latexmk",
		},
		{
			name: "xelatex when latexmk missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"xelatex": true, "lualatex": true},
				runnableCmds:  map[string]bool{"xelatex --version": true, "lualatex --version": true},
			},
			wantName: "xelatex",
		},
		{
			name: "latexmk on PATH but broken",
			exec: &mockExecutor{
				availableBins: map[string]bool{"latexmk": true, "lualatex": true},
				runnableCmds:  map[string]bool{"lualatex --version": true},
			},
			wantName: "lualatex",
		},
		{
			name:    "none available",
			exec:    &mockExecutor{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := detect(tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no TeX engine available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, e.Name())
		})
	}
}

func TestCompileLatexmk(t *testing.T) {
	m := &mockExecutor{}
	out := t.TempDir()
	var log strings.Builder

	pdf, err := newLatexmk(m).Compile(context.Background(), filepath.Join("build", "iliad.tex"), out, &log)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "iliad.pdf"), pdf)
	require.Len(t, m.calls, 1)
	assert.Equal(t, "build"+string(filepath.Separator), m.calls[0].dir)
	assert.Equal(t, "latexmk", m.calls[0].name)
	assert.Contains(t, m.calls[0].args, "-xelatex")
	assert.Contains(t, m.calls[0].args, "-outdir="+out)
	assert.Equal(t, "iliad.tex", m.calls[0].args[len(m.calls[0].args)-1])
	assert.Contains(t, log.String(), "This is latexmk")
}

func TestCompileDirectRunsTwice(t *testing.T) {
	m := &mockExecutor{}
	out := t.TempDir()

	pdf, err := newDirect(binXelatex, m).Compile(context.Background(), "odyssey.tex", out, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "odyssey.pdf"), pdf)
	require.Len(t, m.calls, 2)
	assert.Equal(t, ".", m.calls[0].dir)
	assert.Contains(t, m.calls[0].args, "-output-directory="+out)
	assert.Equal(t, m.calls[0], m.calls[1])
}

func TestCompileFailure(t *testing.T) {
	m := &mockExecutor{runErr: errors.New("exit status 1")}

	_, err := newDirect(binLualatex, m).Compile(context.Background(), "bad.tex", t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running lualatex on bad.tex")
	assert.Len(t, m.calls, 1, "stops after the first failed run")
}
