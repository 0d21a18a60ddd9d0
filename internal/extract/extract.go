// Package extract fetches an arbitrary article URL and pulls out a readable
// title and body. Targets are untrusted input, so every fetch passes an
// SSRF guard first.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/deusflow/newsgate/internal/textutil"
)

var (
	// ErrInvalidURL marks input that is not a usable http/https URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrBlockedHost marks targets rejected by the SSRF guard.
	ErrBlockedHost = errors.New("blocked host")
)

// minParagraphRunes is the length below which a <p> is considered noise
// (button labels, bylines, timestamps).
const minParagraphRunes = 20

// truncationMarker is appended when the extracted body hits the length cap.
const truncationMarker = "\n\n（内容过长，已截断）"

const extractorUserAgent = "newsgate/0.1 (+https://github.com/deusflow/newsgate)"

// Content is the extraction result. Nothing is cached; a repeated call
// refetches the page.
type Content struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Extractor fetches and strips article pages.
type Extractor struct {
	client   *http.Client
	log      *slog.Logger
	timeout  time.Duration
	maxRunes int
}

// New builds an Extractor. The client follows redirects; the timeout bounds
// the whole fetch including redirect hops.
func New(client *http.Client, timeout time.Duration, maxRunes int, log *slog.Logger) *Extractor {
	return &Extractor{
		client:   client,
		log:      log,
		timeout:  timeout,
		maxRunes: maxRunes,
	}
}

// Extract validates the target, fetches it and extracts {title, content}.
// Failures are ErrInvalidURL or ErrBlockedHost for bad input, anything else
// is a fetch/parse failure.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Content, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http/https is supported", ErrInvalidURL)
	}
	if BlockedHostname(u.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrBlockedHost, u.Hostname())
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", extractorUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching article: HTTP %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		return nil, fmt.Errorf("target is not an HTML page (%s)", contentType)
	}

	// Chinese news sites still serve GBK/GB2312 now and then; decode to
	// UTF-8 before parsing.
	body, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	title := textutil.Collapse(doc.Find("title").First().Text())
	content := e.readableText(doc)

	e.log.Debug("extracted article", "url", u.String(), "title_len", len(title), "content_len", len(content))
	return &Content{URL: u.String(), Title: title, Content: content}, nil
}

// readableText strips noise elements, prefers the first <article> block and
// joins its long-enough paragraphs. Pages without usable paragraphs fall
// back to the whole body text.
func (e *Extractor) readableText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, svg").Remove()

	root := doc.Selection
	if article := doc.Find("article").First(); article.Length() > 0 {
		root = article
	}

	var paragraphs []string
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := textutil.Collapse(s.Text())
		if utf8.RuneCountInString(text) >= minParagraphRunes {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.Join(paragraphs, "\n\n")
	if text == "" {
		if body := doc.Find("body").First(); body.Length() > 0 {
			text = textutil.Collapse(body.Text())
		} else {
			text = textutil.Collapse(doc.Text())
		}
	}

	if utf8.RuneCountInString(text) > e.maxRunes {
		text = textutil.TruncateRunes(text, e.maxRunes) + truncationMarker
	}
	return text
}

// BlockedHostname implements the SSRF guard: empty hosts, local names and
// private/loopback IPv4 literals are rejected. The check is on the literal
// hostname only — it does not resolve DNS, so a public name pointing at a
// private address gets through. Known gap, kept deliberately.
func BlockedHostname(hostname string) bool {
	h := strings.ToLower(strings.TrimSpace(hostname))
	if h == "" {
		return true
	}
	if h == "localhost" || strings.HasSuffix(h, ".local") {
		return true
	}
	if h == "::1" {
		return true
	}
	ip := net.ParseIP(h)
	if ip == nil {
		return false
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return false
	}
	switch {
	case ip4[0] == 10: // 10.0.0.0/8
		return true
	case ip4[0] == 127: // 127.0.0.0/8
		return true
	case ip4[0] == 192 && ip4[1] == 168: // 192.168.0.0/16
		return true
	case ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31: // 172.16.0.0/12
		return true
	}
	return false
}
