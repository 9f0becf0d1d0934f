package storage

import (
	"context"
	"fmt"
)

// Export pages through store newest first and writes every article to sink.
// Listed articles carry no content text.
func Export(ctx context.Context, store ArticleStore, sink ArticleSink, batchSize int) (int, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batch size must be positive")
	}

	total := 0
	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		batch, err := store.List(ctx, batchSize, offset)
		if err != nil {
			return total, fmt.Errorf("list articles at offset %d: %w", offset, err)
		}
		if err := sink.PutArticleBatch(batch); err != nil {
			return total, err
		}
		total += len(batch)
		if len(batch) < batchSize {
			return total, nil
		}
	}
}
