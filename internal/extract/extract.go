// Package extract fetches article pages and reduces them to readable text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"newsLedger/internal/apperr"
	"newsLedger/internal/metrics"
	"newsLedger/internal/model"
)

const (
	// UntitledArticle is the title of pages that carry none.
	UntitledArticle = "Untitled Article"

	maxBodyBytes      = 5 << 20
	minReadableLength = 200
	defaultUserAgent  = "newsLedger/1.0 (+article verification)"
)

var errEmptyContent = errors.New("no readable content")

// Extractor fetches pages over HTTP.
type Extractor struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	logger    *zap.Logger
}

// New builds an Extractor. A nil client gets one with the given timeout.
func New(client *http.Client, timeout time.Duration, userAgent string, logger *zap.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, userAgent: userAgent, maxBody: maxBodyBytes, logger: logger}
}

// Fetch downloads rawURL and extracts its content. Failures are ExtractionFailed.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (extracted model.Extracted, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream("extract", "fetch", start, err) }()

	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return model.Extracted{}, apperr.New(apperr.ExtractionFailed, "unsupported url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return model.Extracted{}, apperr.Wrap(apperr.ExtractionFailed, err, "build request")
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return model.Extracted{}, apperr.Wrap(apperr.ExtractionFailed, err, "failed to fetch article: "+failureDetail(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Warn("fetch returned non-200", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return model.Extracted{}, apperr.New(apperr.ExtractionFailed, fmt.Sprintf("article fetch returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody+1))
	if err != nil {
		e.logger.Warn("read failed", zap.String("url", rawURL), zap.Error(err))
		return model.Extracted{}, apperr.Wrap(apperr.ExtractionFailed, err, "failed to read article: "+failureDetail(err))
	}
	if int64(len(body)) > e.maxBody {
		e.logger.Warn("article too large", zap.String("url", rawURL), zap.Int64("limit", e.maxBody))
		return model.Extracted{}, apperr.New(apperr.ExtractionFailed, fmt.Sprintf("article exceeds %d bytes", e.maxBody))
	}

	extracted, err = Extract(body, pageURL)
	if err != nil {
		return model.Extracted{}, apperr.Wrap(apperr.ExtractionFailed, err, "failed to extract article content")
	}
	e.logger.Debug("article extracted",
		zap.String("url", rawURL),
		zap.String("title", extracted.Title),
		zap.Int("text_len", len(extracted.Text)),
	)
	return extracted, nil
}

// failureDetail summarizes a transport error without leaking addresses or internals.
func failureDetail(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &dnsErr):
		if dnsErr.IsNotFound {
			return "no such host"
		}
		return "dns lookup failed"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "connection closed early"
	default:
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return "connection refused"
		}
		return "connection failed"
	}
}

// Extract reduces a fetched body to title, description, publication date and plain text.
func Extract(body []byte, pageURL *url.URL) (model.Extracted, error) {
	if !bytes.ContainsRune(body, '<') {
		text := collapse(string(body))
		if text == "" {
			return model.Extracted{}, errEmptyContent
		}
		return model.Extracted{Title: UntitledArticle, Text: text}, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.Extracted{}, fmt.Errorf("parse html: %w", err)
	}

	out := model.Extracted{
		Title:       extractTitle(doc),
		Description: extractDescription(doc),
		PublishedAt: extractPublishedAt(doc),
	}

	doc.Find("script, style, noscript, template").Remove()
	out.Text = extractText(doc, pageURL)
	if out.Text == "" {
		return model.Extracted{}, errEmptyContent
	}
	return out, nil
}

func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := cleanInline(og); title != "" {
			return title
		}
	}
	if title := cleanInline(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return UntitledArticle
}

func extractDescription(doc *goquery.Document) string {
	for _, selector := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if desc := cleanInline(content); desc != "" {
				return desc
			}
		}
	}
	return ""
}

func extractPublishedAt(doc *goquery.Document) *time.Time {
	content, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content")
	if !ok {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(content))
	if err != nil {
		return nil
	}
	ts = ts.UTC()
	return &ts
}

func extractText(doc *goquery.Document, pageURL *url.URL) string {
	if cleaned, err := doc.Html(); err == nil {
		if article, err := readability.FromReader(strings.NewReader(cleaned), pageURL); err == nil {
			var buf strings.Builder
			if err := article.RenderText(&buf); err == nil {
				if text := collapse(buf.String()); len(text) >= minReadableLength {
					return text
				}
			}
		}
	}

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return strings.Join(textNodes(root, nil), " ")
}

func textNodes(sel *goquery.Selection, parts []string) []string {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			if text := collapse(node.Text()); text != "" {
				parts = append(parts, text)
			}
		case "#comment":
		default:
			parts = textNodes(node, parts)
		}
	})
	return parts
}

// cleanInline strips markup from a short attribute or title value.
func cleanInline(s string) string {
	return collapse(html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s)))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
