package kvstore

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLStoreSQLite(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(openSQLite(t), WithSQLDialect(DialectSQLite), WithSQLTableName("kv_test"))

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	// Idempotent
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema twice: %v", err)
	}

	if _, ok, err := store.Get(ctx, "terpenos-cart"); ok || err != nil {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}

	if err := store.Set(ctx, "terpenos-cart", `{"items":[]}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "terpenos-cart", `{"items":[],"total":0}`); err != nil {
		t.Fatalf("Set upsert: %v", err)
	}

	v, ok, err := store.Get(ctx, "terpenos-cart")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if v != `{"items":[],"total":0}` {
		t.Errorf("Get = %q, want the upserted value", v)
	}

	if err := store.Remove(ctx, "terpenos-cart"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(ctx, "terpenos-cart"); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "terpenos-cart"); ok {
		t.Error("key still present after Remove")
	}
	if store.TableName() != "kv_test" {
		t.Errorf("TableName() = %q", store.TableName())
	}
}

func TestSQLStoreMissingTable(t *testing.T) {
	store := NewSQLStore(openSQLite(t), WithSQLDialect(DialectSQLite))

	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Error("Get without schema should fail")
	}
}

func TestDialectForDriver(t *testing.T) {
	tests := []struct {
		driver  string
		want    SQLDialect
		wantErr bool
	}{
		{"mysql", DialectMySQL, false},
		{"sqlite", DialectSQLite, false},
		{"sqlite3", DialectSQLite, false},
		{"postgres", 0, true},
	}
	for _, tt := range tests {
		got, err := DialectForDriver(tt.driver)
		if (err != nil) != tt.wantErr {
			t.Errorf("DialectForDriver(%q) err = %v", tt.driver, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("DialectForDriver(%q) = %v, want %v", tt.driver, got, tt.want)
		}
	}
}
