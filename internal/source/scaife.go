// Copyright Szymon Zygula, 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/szymon-zygula/egrapsa/internal/httputil"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

const (
	DefaultBaseURL   = "https://scaife.perseus.org"
	DefaultUserAgent = "egrapsa/0.1"
	defaultTimeout   = 60 * time.Second

	// maxPayload bounds a single work download.
	maxPayload = 64 << 20
)

// Scaife fetches CTS passages as TEI XML from a Scaife viewer.
type Scaife struct {
	BaseURL    string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

// NewScaife builds a client from cfg, filling unset fields with defaults.
func NewScaife(cfg types.SourceConfig) *Scaife {
	s := &Scaife{
		BaseURL:    cfg.BaseURL,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.UserAgent == "" {
		s.UserAgent = DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	s.Client = &http.Client{Timeout: timeout}
	return s
}

// URL returns the cts-api-xml endpoint for urn.
func (s *Scaife) URL(urn string) string {
	return fmt.Sprintf("%s/library/%s/cts-api-xml", strings.TrimRight(s.BaseURL, "/"), url.PathEscape(urn))
}

// Raw downloads the TEI payload for urn.
func (s *Scaife) Raw(ctx context.Context, urn string) ([]byte, error) {
	u := s.URL(urn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "application/xml")

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, u)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(data) > maxPayload {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", u, maxPayload)
	}
	return data, nil
}
