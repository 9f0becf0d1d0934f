// Package memory is a process-local ArticleStore for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsLedger/internal/model"
	"newsLedger/internal/storage"
)

type Store struct {
	mu       sync.RWMutex
	articles []model.Article
	byURL    map[string]int
	byID     map[string]int
	now      func() time.Time
}

var _ storage.ArticleStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		byURL: make(map[string]int),
		byID:  make(map[string]int),
		now:   time.Now,
	}
}

func (s *Store) Insert(_ context.Context, article model.Article) (model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byURL[article.SourceURL]; ok {
		return model.Article{}, storage.ErrDuplicateURL
	}
	article.ID = uuid.NewString()
	article.CreatedAt = s.now().UTC()

	s.articles = append(s.articles, article)
	idx := len(s.articles) - 1
	s.byURL[article.SourceURL] = idx
	s.byID[article.ID] = idx
	return article, nil
}

func (s *Store) FindByURL(_ context.Context, sourceURL string) (model.Article, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byURL[sourceURL]
	if !ok {
		return model.Article{}, false, nil
	}
	return s.articles[idx], true, nil
}

func (s *Store) FindByHash(_ context.Context, hash string) (model.Article, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, article := range s.articles {
		if article.ContentHash == hash {
			return article, true, nil
		}
	}
	return model.Article{}, false, nil
}

func (s *Store) FindByID(_ context.Context, id string) (model.Article, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return model.Article{}, false, nil
	}
	return s.articles[idx], true, nil
}

func (s *Store) List(_ context.Context, limit, offset int) ([]model.Article, error) {
	if limit <= 0 || offset < 0 {
		return nil, fmt.Errorf("invalid page: limit=%d offset=%d", limit, offset)
	}

	s.mu.RLock()
	sorted := make([]model.Article, 0, len(s.articles))
	for i := len(s.articles) - 1; i >= 0; i-- {
		sorted = append(sorted, s.articles[i])
	}
	s.mu.RUnlock()

	// later inserts stay first among equal timestamps
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if offset >= len(sorted) {
		return []model.Article{}, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	page := sorted[offset:end]
	out := make([]model.Article, len(page))
	for i, article := range page {
		article.ContentText = ""
		out[i] = article
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles), nil
}

func (s *Store) AttachChainTx(_ context.Context, id, txRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok || s.articles[idx].ChainTxRef != nil {
		return fmt.Errorf("attach chain tx to %s: %w", id, storage.ErrNotFound)
	}
	ref := txRef
	s.articles[idx].ChainTxRef = &ref
	return nil
}
