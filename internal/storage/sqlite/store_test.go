package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/louisbranch/datastore/internal/storage"
	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "datastore.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() {
		_ = sqlDB.Close()
	}()

	assertTableExists(t, sqlDB, "data")
	assertTableExists(t, sqlDB, "schema_migrations")
}

func TestOpenTwiceIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "1", "one"); err != nil {
		t.Fatalf("save: %v", err)
	}
	value, found, err := store.Load(ctx, "1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found || value != "one" {
		t.Fatalf("load = (%q, %v), want (%q, true)", value, found, "one")
	}

	if err := store.Save(ctx, "1", "numberone"); err != nil {
		t.Fatalf("save update: %v", err)
	}
	value, _, err = store.Load(ctx, "1")
	if err != nil {
		t.Fatalf("load update: %v", err)
	}
	if value != "numberone" {
		t.Fatalf("value = %q, want %q", value, "numberone")
	}
}

func TestLoadMissing(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatal("expected missing key")
	}
}

func TestValuesAreNotInterpolated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	key := "it's"
	value := "'); DROP TABLE data; --"
	if err := store.Save(ctx, key, value); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, found, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found || got != value {
		t.Fatalf("load = (%q, %v), want (%q, true)", got, found, value)
	}
}

func TestEmptyValueIsStored(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "blank", ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	value, found, err := store.Load(ctx, "blank")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found || value != "" {
		t.Fatalf("load = (%q, %v), want (\"\", true)", value, found)
	}
}

func TestSaveBatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries := make([]storage.Entry, 0, 10)
	for i := 0; i < 10; i++ {
		entries = append(entries, storage.Entry{Key: fmt.Sprintf("k%d", i), Value: fmt.Sprintf("v%d", i)})
	}
	if err := store.SaveBatch(ctx, entries); err != nil {
		t.Fatalf("save batch: %v", err)
	}
	for _, entry := range entries {
		value, found, err := store.Load(ctx, entry.Key)
		if err != nil {
			t.Fatalf("load %s: %v", entry.Key, err)
		}
		if !found || value != entry.Value {
			t.Fatalf("load %s = (%q, %v), want (%q, true)", entry.Key, value, found, entry.Value)
		}
	}
}

func TestSaveBatchEmptyIsNoop(t *testing.T) {
	store := openTestStore(t)
	if err := store.SaveBatch(context.Background(), nil); err != nil {
		t.Fatalf("save empty batch: %v", err)
	}
}

func TestSaveBatchIsAllOrNothing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.sqlDB.ExecContext(ctx, `CREATE TRIGGER reject_bad BEFORE INSERT ON data
		WHEN NEW.key = 'bad'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	err := store.SaveBatch(ctx, []storage.Entry{
		{Key: "good", Value: "1"},
		{Key: "bad", Value: "2"},
	})
	if err == nil {
		t.Fatal("expected batch to fail")
	}

	_, found, err := store.Load(ctx, "good")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatal("expected failed batch to leave no rows")
	}
}

func TestNilStoreReturnsError(t *testing.T) {
	var store *Store
	ctx := context.Background()
	if _, _, err := store.Load(ctx, "k"); err == nil {
		t.Fatal("expected load error")
	}
	if err := store.Save(ctx, "k", "v"); err == nil {
		t.Fatal("expected save error")
	}
	if err := store.SaveBatch(ctx, []storage.Entry{{Key: "k"}}); err == nil {
		t.Fatal("expected save batch error")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func TestClassifyLeavesOtherErrors(t *testing.T) {
	base := errors.New("boom")
	if err := classify(base); errors.Is(err, storage.ErrStoreUnavailable) {
		t.Fatalf("expected plain error to stay unclassified, got %v", err)
	}
}

func assertTableExists(t *testing.T, sqlDB *sql.DB, name string) {
	t.Helper()
	var found string
	err := sqlDB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&found)
	if err != nil {
		t.Fatalf("expected table %s: %v", name, err)
	}
}
