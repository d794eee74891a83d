// Copyright Szymon Zygula, 2026. All rights reserved.

package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"urn:cts:greekLit:tlg0012.tlg001.perseus-grc2", "tlg0012.tlg001.perseus-grc2.tex"},
		{"texts/iliad.txt", "iliad.tex"},
		{"/srv/tei/caesar.bg.xml", "caesar.bg.tex"},
		{"plain", "plain.tex"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, outputName(tt.id))
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"convert", "edition", "rules", "cache", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestSourceFilesCarryHeader(t *testing.T) {
	const header = "// Copyright Szymon Zygula, 2026. All rights reserved."
	root := filepath.Join("..", "..")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		lines := strings.SplitN(string(data), "\n", 5)
		assert.Contains(t, lines[:len(lines)-1], header, path)
		return nil
	})
	assert.NoError(t, err)
}
