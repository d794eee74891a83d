// Copyright Szymon Zygula, 2026. All rights reserved.

package types

import "time"

// SourceConfig holds settings for fetching source texts.
type SourceConfig struct {
	// BaseURL is the Scaife viewer root (default "https://scaife.perseus.org").
	BaseURL string `json:"base_url" mapstructure:"base_url" yaml:"base_url"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "egrapsa/0.1").
	UserAgent string `json:"user_agent" mapstructure:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" mapstructure:"max_retries" yaml:"max_retries"`

	// CacheDir holds the SQLite source cache. Empty disables caching.
	CacheDir string `json:"cache_dir" mapstructure:"cache_dir" yaml:"cache_dir"`
}

// LayoutConfig holds the approximate page geometry used to estimate page
// and line boundaries.
type LayoutConfig struct {
	// WordsPerPage is the approximate number of words on a page (default 250).
	WordsPerPage int `json:"words_per_page" mapstructure:"words_per_page" yaml:"words_per_page"`

	// WordsPerLine is the approximate number of words on a line (default 10).
	WordsPerLine int `json:"words_per_line" mapstructure:"words_per_line" yaml:"words_per_line"`

	// ChapterNewPage starts every ornamented chapter or book on a new page.
	ChapterNewPage bool `json:"chapter_new_page" mapstructure:"chapter_new_page" yaml:"chapter_new_page"`
}

const (
	DefaultWordsPerPage = 250
	DefaultWordsPerLine = 10
)

// Normalized returns a copy with non-positive densities replaced by the
// defaults.
func (l LayoutConfig) Normalized() LayoutConfig {
	if l.WordsPerPage <= 0 {
		l.WordsPerPage = DefaultWordsPerPage
	}
	if l.WordsPerLine <= 0 {
		l.WordsPerLine = DefaultWordsPerLine
	}
	return l
}

// OutputConfig controls the shape of the emitted LaTeX.
type OutputConfig struct {
	// Standalone wraps the body in a complete document with preamble.
	Standalone bool `json:"standalone" mapstructure:"standalone" yaml:"standalone"`

	// Title and Author are used on the title page of a standalone document.
	Title  string `json:"title,omitempty" mapstructure:"title" yaml:"title,omitempty"`
	Author string `json:"author,omitempty" mapstructure:"author" yaml:"author,omitempty"`

	// Language is the babel language option (e.g. "greek.polutoniko", "latin").
	Language string `json:"language,omitempty" mapstructure:"language" yaml:"language,omitempty"`

	// PDF compiles the output with the detected TeX engine.
	PDF bool `json:"pdf" mapstructure:"pdf" yaml:"pdf"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Source SourceConfig `json:"source" mapstructure:"source" yaml:"source"`
	Layout LayoutConfig `json:"layout" mapstructure:"layout" yaml:"layout"`
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// StylePath is the style ruleset file. Empty selects the built-in
	// default style.
	StylePath string `json:"style" mapstructure:"style" yaml:"style"`

	// Workers bounds the number of chunks styled concurrently
	// (default GOMAXPROCS).
	Workers int `json:"workers" mapstructure:"workers" yaml:"workers"`
}
