package thumbcache

import (
	"context"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.Get(ctx, "brochure-a"); err != nil || ok {
		t.Fatalf("Get() on empty store = (%v, %v), want miss", ok, err)
	}

	asset := Asset{MIME: "image/jpeg", Data: []byte("jpeg-bytes")}
	if err := s.Set(ctx, "brochure-a", asset); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, ok, err := s.Get(ctx, "brochure-a")
	if err != nil || !ok {
		t.Fatalf("Get() after Set() = (%v, %v), want hit", ok, err)
	}
	if got.MIME != asset.MIME || string(got.Data) != string(asset.Data) {
		t.Fatalf("Get() = %+v, want %+v", got, asset)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "p", Asset{MIME: "image/png", Data: []byte("old")})
	_ = s.Set(ctx, "p", Asset{MIME: "image/jpeg", Data: []byte("new")})

	got, _, _ := s.Get(ctx, "p")
	if string(got.Data) != "new" {
		t.Fatalf("Set() did not overwrite: %+v", got)
	}
}

func TestMemoryStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "p", Asset{MIME: "image/jpeg", Data: []byte("x")})

	if err := s.Invalidate(ctx, "p"); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "p"); ok {
		t.Fatal("entry survived Invalidate()")
	}
	// Invalidating an absent entry is a no-op, not an error.
	if err := s.Invalidate(ctx, "never-cached"); err != nil {
		t.Fatalf("Invalidate() on absent entry: %v", err)
	}
}

func TestMemoryStoreNotDurable(t *testing.T) {
	if NewMemoryStore().Durable() {
		t.Fatal("memory store must not report durability")
	}
}
