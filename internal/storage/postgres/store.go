package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsLedger/internal/model"
	"newsLedger/internal/storage"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	source_url TEXT NOT NULL UNIQUE,
	source_name TEXT NOT NULL,
	description TEXT,
	publication_date TIMESTAMPTZ NOT NULL,
	content_text TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	blockchain_tx_hash TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS articles_content_hash_idx ON articles (content_hash);
`

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	articleColumns = []string{
		"id", "title", "source_url", "source_name", "COALESCE(description, '')",
		"publication_date", "content_text", "content_hash", "blockchain_tx_hash", "created_at",
	}
	listColumns = []string{
		"id", "title", "source_url", "source_name", "COALESCE(description, '')",
		"publication_date", "''", "content_hash", "blockchain_tx_hash", "created_at",
	}
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store provides Postgres persistence for articles.
type Store struct {
	db  DB
	now func() time.Time
}

var _ storage.ArticleStore = (*Store)(nil)

// NewStore connects to dsn. maxConns <= 0 keeps the pgxpool default.
func NewStore(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pg dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewStoreWithDB(pool), nil
}

func NewStoreWithDB(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// EnsureSchema creates the articles table and its indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, article model.Article) (model.Article, error) {
	article.ID = uuid.NewString()
	article.CreatedAt = s.now().UTC()

	var description *string
	if article.Description != "" {
		description = &article.Description
	}

	query, args, err := psql.Insert("articles").
		Columns("id", "title", "source_url", "source_name", "description",
			"publication_date", "content_text", "content_hash", "blockchain_tx_hash", "created_at").
		Values(article.ID, article.Title, article.SourceURL, article.SourceName, description,
			article.PublicationDate, article.ContentText, article.ContentHash, article.ChainTxRef, article.CreatedAt).
		ToSql()
	if err != nil {
		return model.Article{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Article{}, storage.ErrDuplicateURL
		}
		return model.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return article, nil
}

func (s *Store) FindByURL(ctx context.Context, sourceURL string) (model.Article, bool, error) {
	return s.findOne(ctx, psql.Select(articleColumns...).From("articles").
		Where(sq.Eq{"source_url": sourceURL}))
}

func (s *Store) FindByHash(ctx context.Context, hash string) (model.Article, bool, error) {
	return s.findOne(ctx, psql.Select(articleColumns...).From("articles").
		Where(sq.Eq{"content_hash": hash}).
		OrderBy("created_at ASC").
		Limit(1))
}

func (s *Store) FindByID(ctx context.Context, id string) (model.Article, bool, error) {
	return s.findOne(ctx, psql.Select(articleColumns...).From("articles").
		Where(sq.Eq{"id": id}))
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]model.Article, error) {
	if limit <= 0 || offset < 0 {
		return nil, fmt.Errorf("invalid page: limit=%d offset=%d", limit, offset)
	}
	query, args, err := psql.Select(listColumns...).From("articles").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

func (s *Store) AttachChainTx(ctx context.Context, id, txRef string) error {
	query, args, err := psql.Update("articles").
		Set("blockchain_tx_hash", txRef).
		Where(sq.Eq{"id": id}).
		Where("blockchain_tx_hash IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("attach chain tx: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("attach chain tx to %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, builder sq.SelectBuilder) (model.Article, bool, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return model.Article{}, false, fmt.Errorf("build select: %w", err)
	}
	article, err := scanArticle(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Article{}, false, nil
		}
		return model.Article{}, false, fmt.Errorf("find article: %w", err)
	}
	return article, true, nil
}

func scanArticle(row pgx.Row) (model.Article, error) {
	var article model.Article
	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.SourceURL,
		&article.SourceName,
		&article.Description,
		&article.PublicationDate,
		&article.ContentText,
		&article.ContentHash,
		&article.ChainTxRef,
		&article.CreatedAt,
	)
	return article, err
}
