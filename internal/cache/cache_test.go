package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUnchanged_UnknownPath_False(t *testing.T) {
	store := openMemory(t)

	unchanged, err := store.Unchanged(context.Background(), "a.go", Fingerprint([]byte("x")))
	require.NoError(t, err)
	require.False(t, unchanged)
}

func TestRecordThenUnchanged_SameContent_True(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	hash := Fingerprint([]byte("package a"))

	require.NoError(t, store.Record(ctx, "a.go", hash, uuid.NewString()))

	unchanged, err := store.Unchanged(ctx, "a.go", hash)
	require.NoError(t, err)
	require.True(t, unchanged)
}

func TestUnchanged_ModifiedContent_False(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "a.go", Fingerprint([]byte("v1")), uuid.NewString()))

	unchanged, err := store.Unchanged(ctx, "a.go", Fingerprint([]byte("v2")))
	require.NoError(t, err)
	require.False(t, unchanged)
}

func TestRecord_Upserts(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	runID := uuid.NewString()

	require.NoError(t, store.Record(ctx, "a.go", Fingerprint([]byte("v1")), runID))
	require.NoError(t, store.Record(ctx, "a.go", Fingerprint([]byte("v2")), runID))

	unchanged, err := store.Unchanged(ctx, "a.go", Fingerprint([]byte("v2")))
	require.NoError(t, err)
	require.True(t, unchanged)
}

func TestForget_DropsFingerprint(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	hash := Fingerprint([]byte("v1"))

	require.NoError(t, store.Record(ctx, "a.go", hash, uuid.NewString()))
	require.NoError(t, store.Forget(ctx, "a.go"))

	unchanged, err := store.Unchanged(ctx, "a.go", hash)
	require.NoError(t, err)
	require.False(t, unchanged)
}

func TestOpen_CreatesParentDirectoryAndPersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cache.db")
	ctx := context.Background()
	hash := Fingerprint([]byte("persisted"))

	store, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, "a.go", hash, uuid.NewString()))
	require.NoError(t, store.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	unchanged, err := reopened.Unchanged(ctx, "a.go", hash)
	require.NoError(t, err)
	require.True(t, unchanged)
}

func TestFingerprint_Deterministic(t *testing.T) {
	require.Equal(t, Fingerprint([]byte("abc")), Fingerprint([]byte("abc")))
	require.NotEqual(t, Fingerprint([]byte("abc")), Fingerprint([]byte("abd")))
}
