// Copyright Szymon Zygula, 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per pipeline stage. Every typed error below unwraps
// to its sentinel so callers can classify with errors.Is.
var (
	ErrConfig = errors.New("config error")
	ErrDecode = errors.New("decode error")
	ErrEngine = errors.New("engine error")
	ErrEmit   = errors.New("emit error")
	ErrFetch  = errors.New("fetch error")
)

// ConfigError reports a malformed or ambiguous style ruleset. It is raised
// before any document processing starts.
type ConfigError struct {
	Path     string // ruleset file, if loaded from disk
	Category string // rule category, if the problem is inside one
	RuleID   string // offending rule id, if known
	Line     int    // YAML line, if known
	Message  string
	Err      error
}

func (e *ConfigError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	msg := e.Message
	if e.RuleID != "" {
		msg = fmt.Sprintf("rule %q: %s", e.RuleID, msg)
	}
	if e.Category != "" {
		msg = fmt.Sprintf("%s: %s", e.Category, msg)
	}
	if loc != "" {
		msg = fmt.Sprintf("%s: %s", loc, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfig, e.Err}
	}
	return []error{ErrConfig}
}

// DecodeError reports source text that is not valid UTF-8.
type DecodeError struct {
	Unit   string // identifier of the unit holding the bad bytes
	Offset int    // byte offset within the unit text
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("invalid UTF-8 in unit %q at byte %d", e.Unit, e.Offset)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

// EngineError is reserved. The rule engine is total for any ruleset that
// passed loading, so nothing currently returns it.
type EngineError struct {
	Index   int
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine: token %d: %s", e.Index, e.Message)
}

func (e *EngineError) Unwrap() error { return ErrEngine }

// EmitError reports a decoration or boundary with no configured rendering.
type EmitError struct {
	Decoration string // decoration or markup that could not be rendered
	Index      int    // element index in the annotated stream
	Text       string // token text at that index
	Unit       string // source unit of the token
}

func (e *EmitError) Error() string {
	msg := fmt.Sprintf("no rendering configured for %s at element %d", e.Decoration, e.Index)
	if e.Text != "" {
		msg = fmt.Sprintf("%s (%q)", msg, e.Text)
	}
	if e.Unit != "" {
		msg = fmt.Sprintf("%s in unit %q", msg, e.Unit)
	}
	return msg
}

func (e *EmitError) Unwrap() error { return ErrEmit }

// FetchError wraps any failure of the source collaborator. The core never
// looks inside it.
type FetchError struct {
	Identifier string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Identifier, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

// Kind returns the stage label of err ("config", "decode", "engine",
// "emit", "fetch") or "error" when err is unclassified.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrEngine):
		return "engine"
	case errors.Is(err, ErrEmit):
		return "emit"
	case errors.Is(err, ErrFetch):
		return "fetch"
	}
	return "error"
}
