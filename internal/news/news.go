// Package news turns raw provider records into canonical articles and
// assembles the aggregation response.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/deusflow/newsgate/internal/provider"
	"github.com/deusflow/newsgate/internal/region"
	"github.com/deusflow/newsgate/internal/textutil"
)

// Article is the canonical, provider-agnostic news item. IDs are stable
// within one response only.
type Article struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Language string `json:"language"`
}

// Envelope is the response of one aggregation request.
type Envelope struct {
	Tag        string    `json:"tag"`
	Keyword    string    `json:"keyword"`
	SearchTime string    `json:"searchTime"`
	Provider   string    `json:"provider"`
	Region     string    `json:"region"`
	Source     string    `json:"source"`
	List       []Article `json:"list"`
}

// Candidate key sets per logical field. Upstreams rename fields freely, so
// extraction is ordered first-match across the known spellings; the nested
// document.* paths cover the wire format of older API generations.
var (
	idKeys       = []string{"id", "_id", "url", "document.id"}
	titleKeys    = []string{"title", "document.title", "seendate"}
	dateKeys     = []string{"publishedAt", "published_at", "seendate", "document.seendate"}
	summaryKeys  = []string{"description", "summary", "document.snippet"}
	urlKeys      = []string{"url", "document.url"}
	sourceKeys   = []string{"source.name", "source", "domain", "document.domain"}
	languageKeys = []string{"language", "lang", "document.language"}
)

// Normalize maps raw provider records to Articles and applies the region
// filter. Per-record anomalies (missing or oddly typed fields) degrade to
// empty strings; one malformed record never fails the batch. Ordering is
// preserved.
func Normalize(raws []provider.Raw, providerID string, reg region.Code) []Article {
	articles := make([]Article, 0, len(raws))
	for idx, raw := range raws {
		a := Article{
			ID:       stringField(raw, idKeys...),
			Title:    stringField(raw, titleKeys...),
			Date:     textutil.FormatDisplayDate(stringField(raw, dateKeys...)),
			Summary:  stringField(raw, summaryKeys...),
			URL:      stringField(raw, urlKeys...),
			Source:   stringField(raw, sourceKeys...),
			Language: stringField(raw, languageKeys...),
		}
		if a.ID == "" {
			a.ID = fmt.Sprint(idx)
		}
		a.Content = buildContent(a.Summary, a.URL, a.Source, providerID)

		if !keep(a, reg) {
			continue
		}
		articles = append(articles, a)
	}
	return articles
}

// buildContent appends provenance lines to the summary, skipping lines whose
// source field is empty.
func buildContent(summary, url, source, providerID string) string {
	var b strings.Builder
	b.WriteString(summary)
	if url != "" {
		b.WriteString("\n\n原文链接：" + url)
	}
	if source != "" {
		b.WriteString("\n来源：" + source)
	}
	if providerID != "" {
		b.WriteString("\n数据源：" + providerID)
	}
	return strings.TrimSpace(b.String())
}

func keep(a Article, reg region.Code) bool {
	if !region.IsURLAllowed(a.URL, reg) {
		return false
	}
	// CN relevance: the title must carry enough Han characters. This keeps
	// Chinese reports from international outlets while dropping unrelated
	// English hits.
	if reg == region.China && textutil.CountHan(a.Title) < region.MinTitleHan {
		return false
	}
	return a.Title != "" || a.Summary != ""
}

// stringField returns the first candidate key holding a non-empty scalar,
// stringified. Dotted keys descend into nested objects.
func stringField(raw provider.Raw, keys ...string) string {
	for _, key := range keys {
		v := any(map[string]any(raw))
		found := true
		for _, part := range strings.Split(key, ".") {
			obj, ok := v.(map[string]any)
			if !ok {
				found = false
				break
			}
			if v, ok = obj[part]; !ok {
				found = false
				break
			}
		}
		if !found || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case float64, int, int64, bool:
			return fmt.Sprint(s)
		}
	}
	return ""
}

// Aggregator picks a provider, fetches, normalizes and samples.
type Aggregator struct {
	registry   *provider.Registry
	log        *slog.Logger
	sampleSize int
}

// NewAggregator wires the orchestrator.
func NewAggregator(registry *provider.Registry, sampleSize int, log *slog.Logger) *Aggregator {
	return &Aggregator{
		registry:   registry,
		log:        log,
		sampleSize: sampleSize,
	}
}

// Aggregate runs one request: exactly one provider is queried, its records
// normalized for the region, and at most sampleSize articles are picked at
// random for display variety. A provider failure fails the whole request.
func (a *Aggregator) Aggregate(ctx context.Context, keyword, sourceID string, reg region.Code) (*Envelope, error) {
	fetcher, id := a.registry.Resolve(sourceID)
	if fetcher == nil {
		return nil, fmt.Errorf("no provider registered for %q", sourceID)
	}

	raws, err := fetcher.Fetch(ctx, keyword)
	if err != nil {
		return nil, err
	}

	articles := Normalize(raws, id, reg)
	a.log.Info("aggregated news",
		"provider", id, "keyword", keyword, "region", string(reg),
		"fetched", len(raws), "kept", len(articles))

	return &Envelope{
		Tag:        keyword,
		Keyword:    keyword,
		SearchTime: textutil.FormatDisplayTime(time.Now()),
		Provider:   id,
		Region:     string(reg),
		Source:     id,
		List:       sample(articles, a.sampleSize),
	}, nil
}

// sample returns all articles when there are at most n, otherwise the first
// n of an unbiased shuffle. The input slice is not modified.
func sample(articles []Article, n int) []Article {
	if len(articles) <= n {
		return articles
	}
	shuffled := make([]Article, len(articles))
	copy(shuffled, articles)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
