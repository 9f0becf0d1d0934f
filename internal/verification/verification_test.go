package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsLedger/internal/apperr"
	"newsLedger/internal/fingerprint"
	"newsLedger/internal/mockstore"
	"newsLedger/internal/model"
	"newsLedger/internal/registry"
	"newsLedger/internal/storage/memory"
)

type pageFetcher map[string]string

func (p pageFetcher) Fetch(_ context.Context, rawURL string) (model.Extracted, error) {
	text, ok := p[rawURL]
	if !ok {
		return model.Extracted{}, apperr.New(apperr.ExtractionFailed, "status 404")
	}
	return model.Extracted{Title: "t", Text: text}, nil
}

func newMockVerifier(t *testing.T) (*Verifier, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	reg := registry.NewMock(mockstore.NewMemory(), nil)
	fetcher := pageFetcher{"https://news.example/a": "Hello world"}
	return New(store, fetcher, reg, nil), store
}

func seed(t *testing.T, store *memory.Store, text string) model.Article {
	t.Helper()
	article, err := store.Insert(context.Background(), model.Article{
		SourceURL:   "https://news.example/a",
		ContentText: text,
		ContentHash: fingerprint.Sum(text),
	})
	require.NoError(t, err)
	return article
}

func TestVerifyUnknownStaysUnverified(t *testing.T) {
	v, _ := newMockVerifier(t)

	for i := 0; i < 3; i++ {
		verdict, err := v.Verify(context.Background(), Request{Content: "never submitted"})
		require.NoError(t, err)
		assert.False(t, verdict.Verified)
		assert.Equal(t, model.SourceNone, verdict.Source)
		assert.False(t, verdict.Chain.Verified)
		assert.Nil(t, verdict.Article)
	}
}

func TestVerifyKnownContentMemoizesChainRecord(t *testing.T) {
	v, store := newMockVerifier(t)
	article := seed(t, store, "Hello world")

	first, err := v.Verify(context.Background(), Request{Content: "Hello world"})
	require.NoError(t, err)
	assert.True(t, first.Verified)
	assert.Equal(t, model.SourceDatabase, first.Source)
	require.NotNil(t, first.Article)
	assert.Equal(t, article.ID, first.Article.ID)

	second, err := v.Verify(context.Background(), Request{Hash: first.Hash})
	require.NoError(t, err)
	assert.True(t, second.Chain.Verified)
	require.NotNil(t, second.Chain.Record)
	assert.Equal(t, article.SourceURL, second.Chain.Record.URL)
	assert.Equal(t, article.CreatedAt.Unix(), second.Chain.Record.RegisteredAt)
}

func TestVerifyContentAndHashAgree(t *testing.T) {
	v, store := newMockVerifier(t)
	seed(t, store, "Hello world")

	byContent, err := v.Verify(context.Background(), Request{Content: "Hello world"})
	require.NoError(t, err)
	byHash, err := v.Verify(context.Background(), Request{Hash: "  " + fingerprint.Sum("Hello world") + " "})
	require.NoError(t, err)

	assert.Equal(t, byContent.Hash, byHash.Hash)
	assert.Equal(t, byContent.Verified, byHash.Verified)
	assert.Equal(t, byContent.Source, byHash.Source)
	assert.Equal(t, byContent.Article, byHash.Article)
}

func TestVerifyPriorityContentFirst(t *testing.T) {
	v, _ := newMockVerifier(t)

	verdict, err := v.Verify(context.Background(), Request{Content: "Hello world", Hash: "deadbeef", URL: "https://news.example/missing"})
	require.NoError(t, err)
	assert.Equal(t, "64ec88ca00b268e5ba1a35678a1b5316d212f4f366b2477232534a8aeca37f3c", verdict.Hash)
}

func TestVerifyByURL(t *testing.T) {
	v, store := newMockVerifier(t)
	seed(t, store, "Hello world")

	verdict, err := v.Verify(context.Background(), Request{URL: "https://news.example/a"})
	require.NoError(t, err)
	assert.True(t, verdict.Verified)

	_, err = v.Verify(context.Background(), Request{URL: "https://news.example/missing"})
	assert.True(t, apperr.Is(err, apperr.ExtractionFailed))
}

func TestVerifyRequiresInput(t *testing.T) {
	v, _ := newMockVerifier(t)
	_, err := v.Verify(context.Background(), Request{Hash: "   "})
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
}

type failingRegistry struct {
	registry.Registry
	record *model.ChainRecord
	err    error
}

func (f failingRegistry) Mode() model.ChainMode { return model.ChainModeLive }

func (f failingRegistry) Confirm(context.Context, string, *model.Article) (*model.ChainRecord, error) {
	return f.record, f.err
}

func TestVerifyLiveChainErrorDegrades(t *testing.T) {
	store := memory.NewStore()
	v := New(store, pageFetcher{}, failingRegistry{err: errors.New("rpc down")}, nil)

	verdict, err := v.Verify(context.Background(), Request{Content: "anything"})
	require.NoError(t, err)
	assert.False(t, verdict.Verified)
	assert.False(t, verdict.Chain.Verified)
}

func TestVerifyChainOnlySource(t *testing.T) {
	record := &model.ChainRecord{Hash: "h", URL: "https://news.example/a", RegisteredAt: 1700000000}
	v := New(memory.NewStore(), pageFetcher{}, failingRegistry{record: record}, nil)

	verdict, err := v.Verify(context.Background(), Request{Hash: "h"})
	require.NoError(t, err)
	assert.True(t, verdict.Verified)
	assert.Equal(t, model.SourceBlockchain, verdict.Source)
	assert.Equal(t, record, verdict.Chain.Record)
}
