package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsLedger/internal/mockstore"
	"newsLedger/internal/model"
)

func TestMockConfirmUnknownHash(t *testing.T) {
	reg := NewMock(mockstore.NewMemory(), nil)
	rec, err := reg.Confirm(context.Background(), "abc", nil)
	if err != nil || rec != nil {
		t.Fatalf("expected no record, got %+v %v", rec, err)
	}
	if ok, _ := reg.IsRegistered(context.Background(), "abc"); ok {
		t.Fatalf("unknown hash reported as registered")
	}
}

func TestMockConfirmSynthesizesOnce(t *testing.T) {
	reg := NewMock(mockstore.NewMemory(), nil)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	article := &model.Article{SourceURL: "https://example.org/a", CreatedAt: created}

	first, err := reg.Confirm(context.Background(), "abc", article)
	if err != nil || first == nil {
		t.Fatalf("confirm: %+v %v", first, err)
	}
	if first.URL != article.SourceURL || first.RegisteredAt != created.Unix() {
		t.Fatalf("unexpected record: %+v", first)
	}

	other := &model.Article{SourceURL: "https://example.org/b", CreatedAt: created.Add(time.Hour)}
	second, err := reg.Confirm(context.Background(), "abc", other)
	if err != nil || second == nil {
		t.Fatalf("confirm: %+v %v", second, err)
	}
	if *second != *first {
		t.Fatalf("record changed between confirms: %+v vs %+v", second, first)
	}
}

func TestMockRegister(t *testing.T) {
	reg := NewMock(mockstore.NewMemory(), nil)
	if reg.CanRegister() {
		t.Fatalf("mock registry must not register on submission")
	}

	entry := model.ChainEntry{Hash: "abc", URL: "https://example.org/a", Timestamp: 1700000000}
	ref, err := reg.Register(context.Background(), entry)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(ref) != 66 {
		t.Fatalf("unexpected tx ref %q", ref)
	}
	again, err := reg.Register(context.Background(), entry)
	if err != nil || again != ref {
		t.Fatalf("expected stable tx ref, got %q %v", again, err)
	}

	rec, err := reg.ReadRecord(context.Background(), "abc")
	if err != nil || rec.URL != entry.URL || rec.RegisteredAt != entry.Timestamp {
		t.Fatalf("unexpected record: %+v %v", rec, err)
	}
	if _, err := reg.ReadRecord(context.Background(), "missing"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestNewSelectsVariant(t *testing.T) {
	reg, err := New(Options{Mode: model.ChainModeTesting})
	if err != nil || reg.Mode() != model.ChainModeTesting {
		t.Fatalf("expected mock registry, got %v %v", reg, err)
	}
	if _, err := New(Options{Mode: model.ChainModeLive}); err == nil {
		t.Fatalf("live registry without backend must fail")
	}
	reg, err = New(Options{Mode: model.ChainModeLive, Backend: newFakeBackend(), Contract: testContract})
	if err != nil || reg.Mode() != model.ChainModeLive {
		t.Fatalf("expected live registry, got %v %v", reg, err)
	}
}
