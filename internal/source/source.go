// Copyright Szymon Zygula, 2026. All rights reserved.

// Package source retrieves source texts and turns them into SourceDocuments.
// CTS URNs are fetched from a Scaife viewer as TEI XML; anything else is a
// local path holding either TEI XML or plain text. Every failure is
// reported as a *types.FetchError.
//
// See docs/ARCHITECTURE.md § Source Collaborator.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/szymon-zygula/egrapsa/internal/logging"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// Store caches raw payloads by identifier.
type Store interface {
	Get(id string) ([]byte, bool, error)
	Put(id string, data []byte) error
}

// Remote fetches raw payloads for CTS URNs.
type Remote interface {
	Raw(ctx context.Context, urn string) ([]byte, error)
}

// Router dispatches an identifier to the matching source.
type Router struct {
	Remote Remote
	// Cache is optional.
	Cache Store
}

// New returns a Router backed by a Scaife client built from cfg.
func New(cfg types.SourceConfig, cache Store) *Router {
	return &Router{Remote: NewScaife(cfg), Cache: cache}
}

// IsCTS reports whether id is a CTS URN.
func IsCTS(id string) bool {
	return strings.HasPrefix(id, "urn:cts:")
}

// Fetch retrieves and parses the work identified by id.
func (r *Router) Fetch(ctx context.Context, id string) (*types.SourceDocument, error) {
	doc, err := r.fetch(ctx, id)
	if err != nil {
		return nil, &types.FetchError{Identifier: id, Err: err}
	}
	return doc, nil
}

func (r *Router) fetch(ctx context.Context, id string) (*types.SourceDocument, error) {
	if IsCTS(id) {
		data, err := r.remote(ctx, id)
		if err != nil {
			return nil, err
		}
		return ParseTEI(data, id)
	}

	data, err := os.ReadFile(id)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(id), ".xml") {
		return ParseTEI(data, id)
	}
	return ParseText(data, id), nil
}

// remote returns the payload for urn from the cache, or fetches and caches it.
func (r *Router) remote(ctx context.Context, urn string) ([]byte, error) {
	log := logging.FromContext(ctx).With("work", urn)
	if r.Remote == nil {
		return nil, fmt.Errorf("no remote source configured")
	}

	if r.Cache != nil {
		data, ok, err := r.Cache.Get(urn)
		switch {
		case err != nil:
			log.Warn("cache read failed, refetching", "error", err)
		case ok:
			log.Debug("cache hit", "bytes", len(data))
			return data, nil
		}
	}

	data, err := r.Remote.Raw(ctx, urn)
	if err != nil {
		return nil, err
	}
	log.Debug("fetched", "bytes", len(data))

	if r.Cache != nil {
		if err := r.Cache.Put(urn, data); err != nil {
			log.Warn("cache write failed", "error", err)
		}
	}
	return data, nil
}
