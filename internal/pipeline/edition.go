// Copyright Szymon Zygula, 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// LoadEdition reads an edition file. Unknown keys, an empty work list and
// works without an identifier are configuration errors.
func LoadEdition(path string) (types.Edition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Edition{}, &types.ConfigError{Path: path, Message: "reading edition", Err: err}
	}
	return ParseEdition(data, path)
}

// ParseEdition parses edition YAML. name is used in error messages.
func ParseEdition(data []byte, name string) (types.Edition, error) {
	var ed types.Edition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ed); err != nil {
		return types.Edition{}, &types.ConfigError{Path: name, Message: "parsing edition", Err: err}
	}

	if len(ed.Works) == 0 {
		return types.Edition{}, &types.ConfigError{Path: name, Message: "edition lists no works"}
	}
	for i, w := range ed.Works {
		if w.Identifier == "" {
			return types.Edition{}, &types.ConfigError{
				Path:    name,
				Message: fmt.Sprintf("work %d (%q) has no identifier", i+1, w.Title),
			}
		}
	}
	if ed.Name == "" {
		ed.Name = name
	}
	return ed, nil
}
