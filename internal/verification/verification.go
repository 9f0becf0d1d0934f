// Package verification answers whether content is known to the article store
// or to the chain registry. Either source is sufficient.
package verification

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"newsLedger/internal/apperr"
	"newsLedger/internal/fingerprint"
	"newsLedger/internal/metrics"
	"newsLedger/internal/model"
	"newsLedger/internal/registry"
	"newsLedger/internal/storage"
	"newsLedger/internal/submission"
)

// Request selects what to verify. Priority is Content, then Hash, then URL.
type Request struct {
	Content string `json:"content,omitempty"`
	Hash    string `json:"hash,omitempty"`
	URL     string `json:"url,omitempty"`
}

type Verifier struct {
	store    storage.ArticleStore
	fetcher  submission.Fetcher
	registry registry.Registry
	logger   *zap.Logger
}

func New(store storage.ArticleStore, fetcher submission.Fetcher, reg registry.Registry, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{store: store, fetcher: fetcher, registry: reg, logger: logger}
}

func (v *Verifier) Verify(ctx context.Context, req Request) (model.Verdict, error) {
	hash, err := v.resolveHash(ctx, req)
	if err != nil {
		return model.Verdict{}, err
	}

	verdict := model.Verdict{Hash: hash}
	article, found, err := v.store.FindByHash(ctx, hash)
	if err != nil {
		return model.Verdict{}, apperr.Wrap(apperr.RemoteUnavailable, err, "article store unavailable")
	}
	if found {
		verdict.Article = &article
	}

	record, err := v.registry.Confirm(ctx, hash, verdict.Article)
	if err != nil {
		v.logger.Warn("chain lookup failed, treating as unverified",
			zap.String("hash", hash),
			zap.String("mode", string(v.registry.Mode())),
			zap.Error(err),
		)
	} else if record != nil {
		verdict.Chain = model.ChainVerdict{Verified: true, Record: record}
	}

	switch {
	case found:
		verdict.Verified, verdict.Source = true, model.SourceDatabase
	case verdict.Chain.Verified:
		verdict.Verified, verdict.Source = true, model.SourceBlockchain
	}

	metrics.IncVerification(verdict.Source)
	return verdict, nil
}

func (v *Verifier) resolveHash(ctx context.Context, req Request) (string, error) {
	switch {
	case req.Content != "":
		return fingerprint.Sum(req.Content), nil
	case strings.TrimSpace(req.Hash) != "":
		hash := strings.ToLower(strings.TrimSpace(req.Hash))
		if !fingerprint.Valid(hash) {
			v.logger.Debug("verifying non-canonical fingerprint", zap.String("hash", hash))
		}
		return hash, nil
	case strings.TrimSpace(req.URL) != "":
		u, err := submission.ValidateURL(req.URL)
		if err != nil {
			return "", err
		}
		extracted, err := v.fetcher.Fetch(ctx, u.String())
		if err != nil {
			if apperr.KindOf(err) == apperr.ExtractionFailed {
				return "", err
			}
			return "", apperr.Wrap(apperr.ExtractionFailed, err, "failed to extract article content")
		}
		return fingerprint.Sum(extracted.Text), nil
	default:
		return "", apperr.New(apperr.InvalidInput, "one of content, hash or url is required")
	}
}
