package mockstore

import (
	"context"
	"sync"
	"testing"

	"newsLedger/internal/model"
)

func TestMemoryPutRecordIfAbsentKeepsFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	first, err := store.PutRecordIfAbsent(ctx, model.ChainRecord{Hash: "h", URL: "https://a", RegisteredAt: 1})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	second, err := store.PutRecordIfAbsent(ctx, model.ChainRecord{Hash: "h", URL: "https://b", RegisteredAt: 2})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if first != second || second.URL != "https://a" {
		t.Fatalf("first record replaced: %+v", second)
	}

	got, ok, err := store.GetRecord(ctx, "h")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.RegisteredAt != 1 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	store := NewMemory()
	if _, ok, err := store.GetRecord(context.Background(), "nope"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.GetUser(context.Background(), "0xabc"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
}

func TestMemoryConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.PutRecordIfAbsent(ctx, model.ChainRecord{Hash: "h", RegisteredAt: int64(i)})
			_ = store.PutUser(ctx, model.UserIdentity{Address: "0xabc", Verified: true, Role: model.RoleReader})
		}(i)
	}
	wg.Wait()

	if _, ok, _ := store.GetRecord(ctx, "h"); !ok {
		t.Fatalf("record missing after concurrent puts")
	}
	user, ok, _ := store.GetUser(ctx, "0xabc")
	if !ok || user.Role != model.RoleReader {
		t.Fatalf("user mismatch: %+v", user)
	}
}
