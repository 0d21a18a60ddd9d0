package provider

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/newsgate/internal/textutil"
)

const bingSearchURL = "https://cn.bing.com/search"

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Bing scrapes the public Bing search result page. There is no stable API
// behind it: results are read off the `li.b_algo` blocks, where the h2
// anchor carries title and link and the following paragraph the snippet.
type Bing struct {
	client  *http.Client
	log     *slog.Logger
	label   string
	timeout time.Duration
	baseURL string
}

// NewBing builds the Bing adapter. label is the human-readable source name
// attached to each record (e.g. 必应搜索).
func NewBing(client *http.Client, label string, timeout time.Duration, log *slog.Logger) *Bing {
	return &Bing{
		client:  client,
		log:     log,
		label:   label,
		timeout: timeout,
		baseURL: bingSearchURL,
	}
}

func (b *Bing) Name() string { return "bing" }

// Fetch issues the search and parses up to maxResults result blocks.
func (b *Bing) Fetch(ctx context.Context, query string) ([]Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	searchURL := b.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, upstreamErr(b.Name(), "building request: %w", err)
	}
	// Browser-like headers; Bing serves a stripped-down page to unknown
	// clients.
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, upstreamErr(b.Name(), "search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamErr(b.Name(), "search returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, upstreamErr(b.Name(), "parsing result page: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	var items []Raw
	doc.Find("li.b_algo").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		anchor := s.Find("h2 a").First()
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		title := textutil.Collapse(anchor.Text())
		if title == "" || href == "" {
			return true
		}
		summary := textutil.Collapse(s.Find("p").First().Text())
		items = append(items, Raw{
			"title":       title,
			"url":         href,
			"summary":     summary,
			"source":      b.label,
			"publishedAt": now,
			"seendate":    now,
		})
		return len(items) < maxResults
	})

	b.log.Debug("bing search parsed", "query", query, "results", len(items))
	return items, nil
}
