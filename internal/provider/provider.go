// Package provider contains the upstream news-search adapters. Each adapter
// turns one external service (Bing web search, the Toutiao search API, the
// Weibo container API) into a flat list of raw records that the normalizer
// in internal/news knows how to canonicalize.
package provider

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds a single upstream fetch. A provider that hasn't
// answered by then fails the whole request; there are no retries here.
const DefaultTimeout = 8 * time.Second

// maxResults caps how many raw records a single fetch may produce.
const maxResults = 60

// Raw is one provider-shaped record. Upstreams rename and drop fields
// without notice, so records stay untyped until normalization.
type Raw map[string]any

// Fetcher is the contract every adapter implements. A nil-error return with
// zero records means the upstream genuinely had no results; hard failures
// (timeout, HTTP error, broken transport) come back as *UpstreamError.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]Raw, error)
}

// UpstreamError wraps a hard provider failure with the provider id.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstreamErr(provider string, format string, args ...any) error {
	return &UpstreamError{Provider: provider, Err: fmt.Errorf(format, args...)}
}

// Source is one entry of the provider registry config file.
type Source struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type sourcesConfig struct {
	Providers []Source `yaml:"providers"`
}

// LoadSources reads the provider registry metadata from a YAML file.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg sourcesConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("%s: no providers configured", path)
	}
	return cfg.Providers, nil
}

// Registry maps source ids to adapters and knows the fallback.
type Registry struct {
	fetchers  map[string]Fetcher
	defaultID string
}

// NewRegistry creates a registry that resolves unknown ids to defaultID.
func NewRegistry(defaultID string) *Registry {
	return &Registry{
		fetchers:  make(map[string]Fetcher),
		defaultID: defaultID,
	}
}

// Register adds an adapter under the given source id.
func (r *Registry) Register(id string, f Fetcher) {
	r.fetchers[id] = f
}

// Resolve returns the adapter for a source id along with the id actually
// chosen. Unknown or empty ids silently fall back to the default provider
// rather than failing the request.
func (r *Registry) Resolve(id string) (Fetcher, string) {
	if f, ok := r.fetchers[id]; ok {
		return f, id
	}
	return r.fetchers[r.defaultID], r.defaultID
}
