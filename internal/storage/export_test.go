package storage_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsLedger/internal/model"
	"newsLedger/internal/storage"
	"newsLedger/internal/storage/memory"
)

func TestExportWritesAllArticles(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for i := 0; i < 5; i++ {
		_, err := store.Insert(ctx, model.Article{
			Title:       fmt.Sprintf("article %d", i),
			SourceURL:   fmt.Sprintf("https://news.example/%d", i),
			ContentHash: fmt.Sprintf("%064d", i),
			ContentText: "body",
		})
		require.NoError(t, err)
	}

	out := filepath.Join(t.TempDir(), "nested", "articles.jsonl")
	sink := storage.NewJsonlStorage(out)
	require.NoError(t, sink.Reset())

	n, err := storage.Export(ctx, store, sink, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	file, err := os.Open(out)
	require.NoError(t, err)
	defer file.Close()

	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var article model.Article
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &article))
		assert.Empty(t, article.ContentText)
		seen[article.SourceURL] = true
	}
	require.NoError(t, scanner.Err())
	assert.Len(t, seen, 5)
}

func TestExportRejectsBadBatchSize(t *testing.T) {
	_, err := storage.Export(context.Background(), memory.NewStore(), storage.NewJsonlStorage(filepath.Join(t.TempDir(), "a.jsonl")), 0)
	assert.Error(t, err)
}
