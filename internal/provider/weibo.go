package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/deusflow/newsgate/internal/textutil"
)

const weiboContainerURL = "https://m.weibo.cn/api/container/getIndex"

const mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

// weiboCreatedAtLayout is the human-readable timestamp Weibo puts in
// mblog.created_at, e.g. "Tue Dec 23 14:30:11 +0800 2025".
const weiboCreatedAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// weiboTitleRunes is how much of a post's text becomes the synthetic title.
const weiboTitleRunes = 60

// Weibo searches posts through the m.weibo.cn container API. Posts have no
// title of their own, so the first 60 runes of the stripped text stand in
// for one.
type Weibo struct {
	client  *http.Client
	log     *slog.Logger
	label   string
	timeout time.Duration
	baseURL string
}

// NewWeibo builds the Weibo adapter.
func NewWeibo(client *http.Client, label string, timeout time.Duration, log *slog.Logger) *Weibo {
	return &Weibo{
		client:  client,
		log:     log,
		label:   label,
		timeout: timeout,
		baseURL: weiboContainerURL,
	}
}

func (w *Weibo) Name() string { return "weibo" }

// Fetch queries the search container and flattens its cards into records.
func (w *Weibo) Fetch(ctx context.Context, query string) ([]Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("containerid", "100103type=1")
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, upstreamErr(w.Name(), "building request: %w", err)
	}
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("Accept", "application/json,text/plain,*/*")
	req.Header.Set("Referer", "https://m.weibo.cn/search?containerid="+url.QueryEscape("100103type=1&q="+query))

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, upstreamErr(w.Name(), "search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamErr(w.Name(), "search returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamErr(w.Name(), "reading response: %w", err)
	}

	var payload struct {
		Data struct {
			Cards []struct {
				Scheme string `json:"scheme"`
				Mblog  *struct {
					Text      string `json:"text"`
					CreatedAt string `json:"created_at"`
				} `json:"mblog"`
			} `json:"cards"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		w.log.Warn("weibo response not parseable, returning no results", "error", err)
		return nil, nil
	}

	var items []Raw
	for _, card := range payload.Data.Cards {
		if len(items) >= maxResults {
			break
		}
		if card.Mblog == nil {
			continue
		}

		text := textutil.Collapse(textutil.DecodeEntities(textutil.StripTags(card.Mblog.Text)))
		title := textutil.TruncateRunes(text, weiboTitleRunes)
		if title == "" {
			title = "微博内容"
		}

		iso := time.Now().Format(time.RFC3339)
		if raw := card.Mblog.CreatedAt; raw != "" {
			if t, err := time.Parse(weiboCreatedAtLayout, raw); err == nil {
				iso = t.Format(time.RFC3339)
			} else if t, ok := textutil.ParseTime(raw); ok {
				iso = t.Format(time.RFC3339)
			}
		}

		link := card.Scheme
		if link == "" {
			link = "https://m.weibo.cn"
		}

		items = append(items, Raw{
			"title":       title,
			"summary":     text,
			"url":         link,
			"source":      w.label,
			"publishedAt": iso,
			"seendate":    iso,
		})
	}

	w.log.Debug("weibo search parsed", "query", query, "results", len(items))
	return items, nil
}
