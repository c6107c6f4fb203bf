package fxkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baekhyunee7/fxkv/pkg/keyrange"
	"github.com/baekhyunee7/fxkv/pkg/options"
	"github.com/baekhyunee7/fxkv/pkg/pool"
)

func openDB(t *testing.T, dir string) *DB {
	t.Helper()
	db, err := Open(context.Background(), "fxkv-test", options.WithDataDir(dir))
	require.NoError(t, err)
	return db
}

func TestCommitAndReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db := openDB(t, dir)
	tx, err := db.Begin(ctx, "tree1", "tree2")
	require.NoError(t, err)
	t1, err := tx.TreeAt(0)
	require.NoError(t, err)
	require.NoError(t, t1.Set([]byte("key1"), []byte("value")))
	t2, err := tx.Tree("tree2")
	require.NoError(t, err)
	require.NoError(t, t2.Set([]byte("key2"), []byte("other")))
	require.NoError(t, tx.Commit())
	require.NoError(t, db.Close(ctx))

	db = openDB(t, dir)
	defer func() { require.NoError(t, db.Close(ctx)) }()
	tx, err = db.Begin(ctx, "tree1", "tree2")
	require.NoError(t, err)
	defer func() { _ = tx.Close() }()

	t1, err = tx.Tree("tree1")
	require.NoError(t, err)
	got, ok, err := t1.Get([]byte("key1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value"), got)
}

func TestSetRemoveCommit(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, t.TempDir())
	defer func() { require.NoError(t, db.Close(ctx)) }()

	tx, err := db.Begin(ctx, "tree1")
	require.NoError(t, err)
	t1, err := tx.Tree("tree1")
	require.NoError(t, err)

	require.NoError(t, t1.Set([]byte("key1"), []byte("value")))
	prior, ok, err := t1.Remove([]byte("key1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value"), prior)
	require.NoError(t, tx.Commit())
}

func TestScanThroughFacade(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, t.TempDir())
	defer func() { require.NoError(t, db.Close(ctx)) }()

	tx, err := db.Begin(ctx, "t")
	require.NoError(t, err)
	view, err := tx.Tree("t")
	require.NoError(t, err)
	require.NoError(t, view.Set([]byte("key1"), []byte("v1")))
	require.NoError(t, view.Set([]byte("key2"), []byte("v2")))
	require.NoError(t, view.Set([]byte("key3"), []byte("v3")))

	pairs, err := view.Scan(keyrange.Range{
		Start: keyrange.Included([]byte("key1")),
		End:   keyrange.Excluded([]byte("key3")),
	})
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, []byte("v1"), pairs[0].Value)
	require.Equal(t, []byte("v2"), pairs[1].Value)
	require.NoError(t, tx.Rollback())
}

func TestPoolIsUsable(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, t.TempDir())
	defer func() { require.NoError(t, db.Close(ctx)) }()

	v, err := pool.Recv(db.Pool(), func() int { return 21 * 2 })
	require.NoError(t, err)
	require.Equal(t, 42, v)
}
