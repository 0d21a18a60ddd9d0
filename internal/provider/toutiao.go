package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const toutiaoSearchURL = "https://www.toutiao.com/api/search/content/"

// Toutiao queries the JSON search endpoint that backs the Toutiao web
// search. The endpoint is unofficial; a malformed or empty body is treated
// as zero results, not as a failure.
type Toutiao struct {
	client  *http.Client
	log     *slog.Logger
	label   string
	timeout time.Duration
	baseURL string
}

// NewToutiao builds the Toutiao adapter.
func NewToutiao(client *http.Client, label string, timeout time.Duration, log *slog.Logger) *Toutiao {
	return &Toutiao{
		client:  client,
		log:     log,
		label:   label,
		timeout: timeout,
		baseURL: toutiaoSearchURL,
	}
}

func (t *Toutiao) Name() string { return "toutiao" }

// Fetch runs one search page (50 items) against the content search API.
func (t *Toutiao) Fetch(ctx context.Context, query string) ([]Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("aid", "24")
	params.Set("app_name", "web_search")
	params.Set("offset", "0")
	params.Set("format", "json")
	params.Set("keyword", query)
	params.Set("autoload", "true")
	params.Set("count", "50")
	params.Set("cur_tab", "1")
	params.Set("from", "search_tab")
	params.Set("pd", "synthesis")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, upstreamErr(t.Name(), "building request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Accept", "application/json,text/plain,*/*")
	req.Header.Set("Referer", "https://www.toutiao.com/search/?keyword="+url.QueryEscape(query))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, upstreamErr(t.Name(), "search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamErr(t.Name(), "search returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamErr(t.Name(), "reading response: %w", err)
	}

	var payload struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		// The endpoint intermittently answers with HTML challenges or
		// empty bodies. Treat that as no results.
		t.log.Warn("toutiao response not parseable, returning no results", "error", err)
		return nil, nil
	}

	var items []Raw
	for _, it := range payload.Data {
		if len(items) >= maxResults {
			break
		}
		title := strings.TrimSpace(firstString(it, "title", "display.title"))
		summary := strings.TrimSpace(firstString(it, "abstract", "display.abstract"))
		link := firstString(it, "article_url", "display_url", "share_url", "open_url")
		if strings.HasPrefix(link, "//") {
			link = "https:" + link
		}
		if title == "" || link == "" {
			continue
		}

		published := time.Now()
		if secs, ok := it["publish_time"].(float64); ok {
			published = time.Unix(int64(secs), 0)
		}
		iso := published.Format(time.RFC3339)

		items = append(items, Raw{
			"title":       title,
			"summary":     summary,
			"url":         link,
			"source":      t.label,
			"publishedAt": iso,
			"seendate":    iso,
		})
	}

	t.log.Debug("toutiao search parsed", "query", query, "results", len(items))
	return items, nil
}

// firstString walks candidate keys (dotted paths descend into nested
// objects) and returns the first non-empty string value.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		v := lookupPath(m, key)
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func lookupPath(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = obj[part]
		if !ok {
			return nil
		}
	}
	return cur
}
