// Package submission turns a submitted article URL into a stored, fingerprinted
// article and anchors the fingerprint on chain when registration is possible.
package submission

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"newsLedger/internal/apperr"
	"newsLedger/internal/fingerprint"
	"newsLedger/internal/metrics"
	"newsLedger/internal/model"
	"newsLedger/internal/registry"
	"newsLedger/internal/storage"
)

const minTitleLength = 3

// Fetcher retrieves and extracts an article page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (model.Extracted, error)
}

// Request is a caller's submission.
type Request struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Result is the outcome of a successful submission.
type Result struct {
	Article     model.Article
	ChainStatus model.ChainStatus
	ChainTxRef  string
	ChainError  string
}

type Submitter struct {
	store    storage.ArticleStore
	fetcher  Fetcher
	registry registry.Registry
	logger   *zap.Logger
	now      func() time.Time
}

func New(store storage.ArticleStore, fetcher Fetcher, reg registry.Registry, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{
		store:    store,
		fetcher:  fetcher,
		registry: reg,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit stores the article behind req.URL. A failed chain registration does
// not fail the submission; it is reported through Result.ChainStatus.
func (s *Submitter) Submit(ctx context.Context, req Request) (Result, error) {
	sourceURL, err := ValidateURL(req.URL)
	if err != nil {
		return Result{}, err
	}
	title := strings.TrimSpace(req.Title)
	if title != "" && len([]rune(title)) < minTitleLength {
		return Result{}, apperr.New(apperr.InvalidInput, "title must be at least 3 characters")
	}

	existing, found, err := s.store.FindByURL(ctx, sourceURL.String())
	if err != nil {
		return Result{}, apperr.Wrap(apperr.RemoteUnavailable, err, "article store unavailable")
	}
	if found {
		return Result{}, apperr.Duplicate(existing.ID)
	}

	extracted, err := s.fetcher.Fetch(ctx, sourceURL.String())
	if err != nil {
		if apperr.KindOf(err) == apperr.ExtractionFailed {
			return Result{}, err
		}
		return Result{}, apperr.Wrap(apperr.ExtractionFailed, err, "failed to extract article content")
	}

	now := s.now().UTC()
	article := model.Article{
		Title:           firstNonEmpty(title, extracted.Title),
		SourceURL:       sourceURL.String(),
		SourceName:      SourceName(sourceURL),
		Description:     firstNonEmpty(strings.TrimSpace(req.Description), extracted.Description),
		PublicationDate: now,
		ContentText:     extracted.Text,
		ContentHash:     fingerprint.Sum(extracted.Text),
	}
	if extracted.PublishedAt != nil {
		article.PublicationDate = extracted.PublishedAt.UTC()
	}

	stored, err := s.store.Insert(ctx, article)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateURL) {
			return Result{}, s.duplicateOf(ctx, article.SourceURL)
		}
		return Result{}, apperr.Wrap(apperr.RemoteUnavailable, err, "failed to store article")
	}

	result := Result{Article: stored, ChainStatus: model.ChainNotConfigured}
	if s.registry != nil && s.registry.CanRegister() {
		s.register(ctx, &result, now)
	}

	metrics.IncSubmission(result.ChainStatus)
	s.logger.Info("article submitted",
		zap.String("id", stored.ID),
		zap.String("url", stored.SourceURL),
		zap.String("hash", stored.ContentHash),
		zap.String("chain_status", string(result.ChainStatus)),
	)
	return result, nil
}

func (s *Submitter) register(ctx context.Context, result *Result, now time.Time) {
	article := &result.Article
	txRef, err := s.registry.Register(ctx, model.ChainEntry{
		Hash:      article.ContentHash,
		URL:       article.SourceURL,
		Timestamp: now.Unix(),
	})
	if err != nil {
		s.logger.Warn("chain registration failed",
			zap.String("id", article.ID),
			zap.String("hash", article.ContentHash),
			zap.Error(err),
		)
		result.ChainStatus = model.ChainAttemptedButFailed
		result.ChainError = err.Error()
		return
	}

	result.ChainStatus = model.ChainRegistered
	result.ChainTxRef = txRef
	if err := s.store.AttachChainTx(ctx, article.ID, txRef); err != nil {
		s.logger.Error("attach chain tx failed",
			zap.String("id", article.ID),
			zap.String("tx", txRef),
			zap.Error(err),
		)
		return
	}
	article.ChainTxRef = &txRef
}

func (s *Submitter) duplicateOf(ctx context.Context, sourceURL string) error {
	existing, found, err := s.store.FindByURL(ctx, sourceURL)
	if err != nil || !found {
		s.logger.Warn("duplicate insert without readable row", zap.String("url", sourceURL), zap.Error(err))
		return apperr.Duplicate("")
	}
	return apperr.Duplicate(existing.ID)
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.New(apperr.InvalidInput, "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.New(apperr.InvalidInput, "url must be an absolute http(s) url")
	}
	return u, nil
}

// SourceName is the URL host without a leading "www.".
func SourceName(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
