package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agentoven/agentoven/control-plane/internal/kv"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
)

func TestMemoryStoreGetMissing(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	_, _, err := s.Get(ctx, "Scenario/missing")
	var nf *contracts.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("Get() on missing key error = %v, want *contracts.ErrNotFound", err)
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "Model/a", []byte("v1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	v, rev, err := s.Get(ctx, "Model/a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(v) != "v1" {
		t.Errorf("Get() value = %q, want %q", v, "v1")
	}
	if rev != 1 {
		t.Errorf("Get() revision = %d, want 1", rev)
	}

	if err := s.Put(ctx, "Model/a", []byte("v2")); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	v, rev, _ = s.Get(ctx, "Model/a")
	if string(v) != "v2" {
		t.Errorf("Get() after overwrite = %q, want %q", v, "v2")
	}
	if rev != 2 {
		t.Errorf("Get() revision after overwrite = %d, want 2", rev)
	}
}

func TestMemoryStoreCreateOnly(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	if err := s.CreateOnly(ctx, "Scenario/s1", []byte("a")); err != nil {
		t.Fatalf("CreateOnly() first call error = %v", err)
	}

	err := s.CreateOnly(ctx, "Scenario/s1", []byte("b"))
	var exists *contracts.ErrAlreadyExists
	if !errors.As(err, &exists) {
		t.Fatalf("CreateOnly() on existing key error = %v, want *contracts.ErrAlreadyExists", err)
	}

	v, _, _ := s.Get(ctx, "Scenario/s1")
	if string(v) != "a" {
		t.Errorf("value after failed CreateOnly = %q, want unchanged %q", v, "a")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "Volume/v1", []byte("x"))
	if err := s.Delete(ctx, "Volume/v1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := s.Get(ctx, "Volume/v1"); err == nil {
		t.Error("Get() after delete should error, got nil")
	}

	// Deleting an absent key is a no-op, not an error.
	if err := s.Delete(ctx, "Volume/never-existed"); err != nil {
		t.Errorf("Delete() on absent key error = %v, want nil", err)
	}
}

func TestMemoryStorePrefixScanSorted(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "Model/c", []byte("3"))
	s.Put(ctx, "Model/a", []byte("1"))
	s.Put(ctx, "Model/b", []byte("2"))
	s.Put(ctx, "Package/a", []byte("other-kind"))

	entries, err := s.PrefixScan(ctx, "Model/")
	if err != nil {
		t.Fatalf("PrefixScan() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("PrefixScan() returned %d entries, want 3", len(entries))
	}
	wantKeys := []string{"Model/a", "Model/b", "Model/c"}
	for i, e := range entries {
		if e.Key != wantKeys[i] {
			t.Errorf("entries[%d].Key = %q, want %q", i, e.Key, wantKeys[i])
		}
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "Model/a", []byte("original"))
	v, _, _ := s.Get(ctx, "Model/a")
	v[0] = 'X'

	v2, _, _ := s.Get(ctx, "Model/a")
	if string(v2) != "original" {
		t.Errorf("mutating a Get() result affected stored value: got %q, want %q", v2, "original")
	}
}
