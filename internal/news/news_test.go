package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/deusflow/newsgate/internal/provider"
	"github.com/deusflow/newsgate/internal/region"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizeFieldCandidates(t *testing.T) {
	raws := []provider.Raw{
		{
			"_id":          "abc123",
			"title":        "中国经济持续增长实现新突破和新进展",
			"published_at": "2025-12-23T14:30:00Z",
			"description":  "经济数据点评",
			"url":          "https://example.com/a",
			"source":       map[string]any{"name": "新华社"},
			"language":     "zh",
		},
		{
			"document": map[string]any{
				"title":    "央行货币政策报告发布经济平稳运行",
				"url":      "https://example.com/b",
				"seendate": "2025-12-22 09:00:00",
				"snippet":  "nested snippet",
				"domain":   "example.com",
			},
		},
	}

	articles := Normalize(raws, "bing", region.China)
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}

	a := articles[0]
	if a.ID != "abc123" {
		t.Errorf("ID = %q, want _id fallback", a.ID)
	}
	if a.Date != "2025-12-23 14:30" {
		t.Errorf("Date = %q", a.Date)
	}
	if a.Summary != "经济数据点评" {
		t.Errorf("Summary = %q", a.Summary)
	}
	if a.Source != "新华社" {
		t.Errorf("Source = %q, want nested source.name", a.Source)
	}
	if a.Language != "zh" {
		t.Errorf("Language = %q", a.Language)
	}

	b := articles[1]
	if b.Title != "央行货币政策报告发布经济平稳运行" {
		t.Errorf("nested document.title not found: %q", b.Title)
	}
	if b.URL != "https://example.com/b" {
		t.Errorf("nested document.url not found: %q", b.URL)
	}
	if b.Summary != "nested snippet" {
		t.Errorf("nested document.snippet not found: %q", b.Summary)
	}
	if b.Source != "example.com" {
		t.Errorf("nested document.domain not found: %q", b.Source)
	}
}

func TestNormalizeContentProvenance(t *testing.T) {
	raws := []provider.Raw{{
		"title":   "中国经济持续增长实现新突破和新进展",
		"summary": "摘要内容",
		"url":     "https://example.com/a",
		"source":  "必应搜索",
	}}

	articles := Normalize(raws, "bing", region.China)
	if len(articles) != 1 {
		t.Fatalf("got %d articles", len(articles))
	}
	content := articles[0].Content
	for _, line := range []string{
		"摘要内容",
		"原文链接：https://example.com/a",
		"来源：必应搜索",
		"数据源：bing",
	} {
		if !strings.Contains(content, line) {
			t.Errorf("content missing %q:\n%s", line, content)
		}
	}
}

func TestNormalizeRegionFilter(t *testing.T) {
	raws := []provider.Raw{
		{"title": "中国经济持续增长实现新突破和新进展", "url": "https://example.com/cn"},
		{"title": "Economy grows", "url": "https://example.com/en"},
		{"title": "中国股市", "url": "https://example.com/short"}, // only 4 Han
		{"title": "中国经济持续增长实现新突破和新进展", "url": "ftp://example.com/x"},
	}

	cn := Normalize(raws, "bing", region.China)
	if len(cn) != 1 || cn[0].URL != "https://example.com/cn" {
		t.Fatalf("CN filter kept wrong set: %+v", cn)
	}

	// ALL keeps everything regardless of Han count or scheme.
	all := Normalize(raws, "bing", region.All)
	if len(all) != 4 {
		t.Errorf("ALL region kept %d, want 4", len(all))
	}

	// A two-letter region other than CN skips the Han check but keeps the
	// scheme check.
	us := Normalize(raws, "bing", region.Code("US"))
	if len(us) != 3 {
		t.Errorf("US region kept %d, want 3", len(us))
	}
}

func TestNormalizeIndexIDFallback(t *testing.T) {
	raws := []provider.Raw{
		{"title": "中国经济持续增长实现新突破和新进展"},
		{"title": "央行货币政策报告发布经济平稳运行"},
	}
	articles := Normalize(raws, "toutiao", region.All)
	if len(articles) != 2 {
		t.Fatalf("got %d articles", len(articles))
	}
	if articles[0].ID != "0" || articles[1].ID != "1" {
		t.Errorf("index fallback IDs = %q, %q", articles[0].ID, articles[1].ID)
	}
}

func TestNormalizeOrderPreserved(t *testing.T) {
	var raws []provider.Raw
	for i := 0; i < 5; i++ {
		raws = append(raws, provider.Raw{
			"id":    fmt.Sprintf("n%d", i),
			"title": "中国经济持续增长实现新突破和新进展",
			"url":   "https://example.com/a",
		})
	}
	articles := Normalize(raws, "bing", region.China)
	for i, a := range articles {
		if a.ID != fmt.Sprintf("n%d", i) {
			t.Fatalf("order not preserved at %d: %q", i, a.ID)
		}
	}
}

func TestSample(t *testing.T) {
	var articles []Article
	for i := 0; i < 30; i++ {
		articles = append(articles, Article{ID: fmt.Sprint(i)})
	}

	got := sample(articles, 10)
	if len(got) != 10 {
		t.Fatalf("sample returned %d, want 10", len(got))
	}
	seen := make(map[string]bool)
	for _, a := range got {
		if seen[a.ID] {
			t.Fatalf("duplicate article %q in sample", a.ID)
		}
		seen[a.ID] = true
	}

	small := articles[:7]
	if got := sample(small, 10); len(got) != 7 {
		t.Errorf("small input should be returned whole, got %d", len(got))
	}
	// The original slice must stay in order.
	for i, a := range articles {
		if a.ID != fmt.Sprint(i) {
			t.Fatalf("input slice mutated at %d", i)
		}
	}
}

type fakeFetcher struct {
	raws []provider.Raw
	err  error
}

func (f *fakeFetcher) Name() string { return "fake" }
func (f *fakeFetcher) Fetch(ctx context.Context, query string) ([]provider.Raw, error) {
	return f.raws, f.err
}

func TestAggregate(t *testing.T) {
	reg := provider.NewRegistry("fake")
	reg.Register("fake", &fakeFetcher{raws: []provider.Raw{
		{"title": "中国经济持续增长实现新突破和新进展", "url": "https://example.com/a"},
	}})

	agg := NewAggregator(reg, 10, testLogger())
	env, err := agg.Aggregate(context.Background(), "财经", "fake", region.China)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if env.Keyword != "财经" || env.Tag != "财经" {
		t.Errorf("keyword echo wrong: %+v", env)
	}
	if env.Provider != "fake" || env.Source != "fake" {
		t.Errorf("provider id wrong: %+v", env)
	}
	if env.Region != "CN" {
		t.Errorf("region = %q", env.Region)
	}
	if env.SearchTime == "" {
		t.Error("SearchTime empty")
	}
	if len(env.List) != 1 {
		t.Errorf("list length = %d", len(env.List))
	}
}

func TestAggregateProviderError(t *testing.T) {
	cause := errors.New("upstream down")
	reg := provider.NewRegistry("fake")
	reg.Register("fake", &fakeFetcher{err: &provider.UpstreamError{Provider: "fake", Err: cause}})

	agg := NewAggregator(reg, 10, testLogger())
	_, err := agg.Aggregate(context.Background(), "财经", "fake", region.China)
	if !errors.Is(err, cause) {
		t.Fatalf("provider error not propagated: %v", err)
	}
}

func TestAggregateUnknownSourceFallsBack(t *testing.T) {
	reg := provider.NewRegistry("fake")
	reg.Register("fake", &fakeFetcher{})

	agg := NewAggregator(reg, 10, testLogger())
	env, err := agg.Aggregate(context.Background(), "财经", "nope", region.China)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if env.Provider != "fake" {
		t.Errorf("unknown source should fall back to default, got %q", env.Provider)
	}
}
