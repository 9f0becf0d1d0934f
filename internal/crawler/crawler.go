// Package crawler submits article links found on trusted listing pages.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"newsLedger/internal/apperr"
	"newsLedger/internal/metrics"
	"newsLedger/internal/submission"
)

const maxListingBytes = 5 << 20

// Source is a trusted listing page and the selector of its article links.
type Source struct {
	Name         string
	URL          string
	LinkSelector string
}

// Submitter stores one article.
type Submitter interface {
	Submit(ctx context.Context, req submission.Request) (submission.Result, error)
}

// Options tunes a Crawler.
type Options struct {
	Client       *http.Client
	UserAgent    string
	Delay        time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Summary counts what one run did.
type Summary struct {
	Found     int
	Submitted int
	Skipped   int
	Failed    int
}

type Crawler struct {
	sources   []Source
	submitter Submitter
	opts      Options
	logger    *zap.Logger
}

func New(sources []Source, submitter Submitter, opts Options, logger *zap.Logger) *Crawler {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{sources: sources, submitter: submitter, opts: opts, logger: logger}
}

// Run crawls every source once. Per-link and per-source failures are counted
// and logged; only cancellation aborts the run.
func (c *Crawler) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	seen := make(map[string]struct{})
	started := time.Now()

	for _, src := range c.sources {
		links, err := c.listLinks(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			c.logger.Error("listing fetch failed", zap.String("source", src.Name), zap.String("url", src.URL), zap.Error(err))
			metrics.IncCrawl(src.Name, "listing_failed")
			continue
		}

		for _, link := range links {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			summary.Found++

			if summary.Submitted+summary.Skipped+summary.Failed > 0 {
				if err := sleep(ctx, c.opts.Delay); err != nil {
					return summary, err
				}
			}

			outcome := c.submit(ctx, src, link)
			switch outcome {
			case "submitted":
				summary.Submitted++
			case "skipped":
				summary.Skipped++
			default:
				summary.Failed++
			}
			metrics.IncCrawl(src.Name, outcome)
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
		}
	}

	c.logger.Info("crawl finished",
		zap.Int("found", summary.Found),
		zap.Int("submitted", summary.Submitted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", time.Since(started)),
	)
	return summary, nil
}

func (c *Crawler) submit(ctx context.Context, src Source, link string) string {
	res, err := c.submitter.Submit(ctx, submission.Request{URL: link})
	switch {
	case err == nil:
		c.logger.Info("article submitted",
			zap.String("source", src.Name),
			zap.String("url", link),
			zap.String("chain_status", string(res.ChainStatus)),
		)
		return "submitted"
	case apperr.Is(err, apperr.DuplicateArticle):
		c.logger.Debug("article already stored", zap.String("url", link))
		return "skipped"
	default:
		c.logger.Warn("article submission failed", zap.String("source", src.Name), zap.String("url", link), zap.Error(err))
		return "failed"
	}
}

func (c *Crawler) listLinks(ctx context.Context, src Source) ([]string, error) {
	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	var doc *goquery.Document
	err = withRetry(ctx, c.opts.MaxRetries, c.opts.RetryBackoff, func(ctx context.Context) error {
		var fetchErr error
		doc, fetchErr = c.fetchListing(ctx, base)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find(src.LinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if link, ok := resolveLink(base, href); ok {
			links = append(links, link)
		}
	})
	c.logger.Debug("listing parsed", zap.String("source", src.Name), zap.Int("links", len(links)))
	return links, nil
}

func (c *Crawler) fetchListing(ctx context.Context, base *url.URL) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.opts.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("listing returned status " + resp.Status)
	}
	return goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxListingBytes))
}

// resolveLink makes href absolute against base and drops fragments and non-http links.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}
