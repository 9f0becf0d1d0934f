package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"newsLedger/internal/model"
)

// JsonlStorage appends articles to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

var _ ArticleSink = (*JsonlStorage)(nil)

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// Reset truncates the output file.
func (s *JsonlStorage) Reset() error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, nil, 0o644); err != nil {
		return fmt.Errorf("truncate output file: %w", err)
	}
	return nil
}

// PutArticleBatch appends a batch of articles as JSON lines.
func (s *JsonlStorage) PutArticleBatch(articles []model.Article) error {
	if len(articles) == 0 {
		return nil
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, article := range articles {
		line, err := json.Marshal(article)
		if err != nil {
			return fmt.Errorf("marshal article %s: %w", article.ID, err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write article: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (s *JsonlStorage) ensureDir() error {
	dir := filepath.Dir(s.path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
