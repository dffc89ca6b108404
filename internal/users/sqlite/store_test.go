package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"snowman/internal/users"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFindOrCreateInsertsUser(t *testing.T) {
	store := openTempStore(t)
	fixed := time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	u, err := store.FindOrCreate(context.Background(), " Alice ", "5551234567", "")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected user id to be assigned")
	}
	if u.Name != "Alice" || u.Phone != "5551234567" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.Client != users.DefaultClient {
		t.Fatalf("expected default client, got %q", u.Client)
	}
	if !u.CreatedAt.Equal(fixed) || !u.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected timestamps %v, got %v / %v", fixed, u.CreatedAt, u.UpdatedAt)
	}
}

func TestFindOrCreateReturnsExistingUnchanged(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	first, err := store.FindOrCreate(ctx, "Alice", "5551234567", "")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := store.FindOrCreate(ctx, "Someone Else", "5551234567", "Other")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if second.ID != first.ID || second.Name != "Alice" || second.Client != users.DefaultClient {
		t.Fatalf("expected existing user %+v, got %+v", first, second)
	}
}

func TestFindOrCreateValidation(t *testing.T) {
	store := openTempStore(t)

	_, err := store.FindOrCreate(context.Background(), "Alice", "123", "")
	if !errors.Is(err, users.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestUpdateScore(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	u, err := store.FindOrCreate(ctx, "Alice", "5551234567", "")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	later := u.CreatedAt.Add(time.Minute)
	store.now = func() time.Time { return later }

	updated, err := store.UpdateScore(ctx, u.ID, 100, 42)
	if err != nil {
		t.Fatalf("update score: %v", err)
	}
	if updated.Score != 100 || updated.TimeTaken != 42 {
		t.Fatalf("unexpected result %+v", updated)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated_at %v, got %v", later, updated.UpdatedAt)
	}

	got, err := store.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score != 100 {
		t.Fatalf("expected persisted score 100, got %d", got.Score)
	}
}

func TestUpdateScoreMissingUser(t *testing.T) {
	store := openTempStore(t)

	_, err := store.UpdateScore(context.Background(), 999, 10, 1)
	if !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateScoreRejectsNegative(t *testing.T) {
	store := openTempStore(t)

	_, err := store.UpdateScore(context.Background(), 1, -10, 1)
	if !errors.Is(err, users.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestGetMissingUser(t *testing.T) {
	store := openTempStore(t)

	if _, err := store.Get(context.Background(), 42); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.FindOrCreate(ctx, "Alice", "5551234567", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNilStore(t *testing.T) {
	var store *Store
	if _, err := store.Get(context.Background(), 1); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestReopenKeepsUsers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	u, err := store.FindOrCreate(context.Background(), "Alice", "5551234567", "")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Phone != u.Phone {
		t.Fatalf("expected phone %q, got %q", u.Phone, got.Phone)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
