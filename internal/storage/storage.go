package storage

import (
	"context"
	"errors"

	"newsLedger/internal/model"
)

var (
	// ErrDuplicateURL is returned by Insert when the source URL is already stored.
	ErrDuplicateURL = errors.New("source url already stored")
	// ErrNotFound is returned when an update targets no row.
	ErrNotFound = errors.New("article not found")
)

// ArticleStore persists articles. Finders report a miss with ok=false.
type ArticleStore interface {
	// Insert assigns ID and CreatedAt and returns the stored article.
	Insert(ctx context.Context, article model.Article) (model.Article, error)
	FindByURL(ctx context.Context, sourceURL string) (model.Article, bool, error)
	// FindByHash returns the earliest article with the fingerprint.
	FindByHash(ctx context.Context, hash string) (model.Article, bool, error)
	FindByID(ctx context.Context, id string) (model.Article, bool, error)
	// List returns articles newest first without content text.
	List(ctx context.Context, limit, offset int) ([]model.Article, error)
	Count(ctx context.Context) (int, error)
	// AttachChainTx sets the chain tx reference if none is set yet.
	AttachChainTx(ctx context.Context, id, txRef string) error
}

// ArticleSink receives batches of articles for export.
type ArticleSink interface {
	PutArticleBatch(articles []model.Article) error
}
