package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, ok, _ := f.Get(ctx, "terpenos-cart"); ok {
		t.Fatal("new store should be empty")
	}

	if err := f.Set(ctx, "terpenos-cart", `{"items":[]}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Set(ctx, "language", "es"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Remove(ctx, "language"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, err := reopened.Get(ctx, "terpenos-cart")
	if err != nil || !ok || v != `{"items":[]}` {
		t.Errorf("Get after reopen = %q, %v, %v", v, ok, err)
	}
	if _, ok, _ := reopened.Get(ctx, "language"); ok {
		t.Error("removed key came back after reopen")
	}
	if reopened.Path() != path {
		t.Errorf("Path() = %q", reopened.Path())
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenFile(path); err == nil {
		t.Error("OpenFile on corrupt file should fail")
	}
}

func TestFileStoreWriteFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Set(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}

	// Point the store at a directory that does not exist
	f.path = filepath.Join(dir, "missing", "data.json")
	if err := f.Set(ctx, "k", "v2"); err == nil {
		t.Fatal("Set into missing directory should fail")
	}
	if v, _, _ := f.Get(ctx, "k"); v != "v1" {
		t.Errorf("failed Set changed value to %q", v)
	}
}
