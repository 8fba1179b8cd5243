package storage

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	h1, err := s.Put(ctx, "models/a.bim", []byte("v1"), "")
	require.NoError(t, err)

	_, err = s.Put(ctx, "models/a.bim", []byte("again"), "")
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, h1, conflict.Actual)

	h2, err := s.Put(ctx, "models/a.bim", []byte("v2"), h1)
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)

	// a writer still holding h1 loses
	_, err = s.Put(ctx, "models/a.bim", []byte("stale"), h1)
	require.True(t, IsConflict(err))

	latest, err := s.Get(ctx, "models/a.bim", "")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), latest.Data)
	require.Equal(t, "v2", latest.Revision)
	require.Equal(t, h2, latest.Hash)

	first, err := s.Get(ctx, "models/a.bim", "v1")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), first.Data)

	_, err = s.Get(ctx, "models/a.bim", "v9")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "missing.bim", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRevisionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	hash := ""
	for _, body := range []string{"a", "bb", "ccc"} {
		var err error
		hash, err = s.Put(ctx, "m.bim", []byte(body), hash)
		require.NoError(t, err)
	}

	revs, err := s.Revisions(ctx, "m.bim")
	require.NoError(t, err)
	require.Len(t, revs, 3)
	require.Equal(t, "v3", revs[0].ID)
	require.True(t, revs[0].IsLatest)
	require.Equal(t, int64(3), revs[0].Size)
	require.False(t, revs[2].IsLatest)

	_, err = s.Revisions(ctx, "other.bim")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, p := range []string{"models/a.bim", "models/mep/b.ifc", "models/mep/c.ifc", "readme.md"} {
		_, err := s.Put(ctx, p, []byte(p), "")
		require.NoError(t, err)
	}

	root, err := s.List(ctx, "/")
	require.NoError(t, err)
	require.Len(t, root, 2)
	require.True(t, root[0].IsDir)
	require.Equal(t, "models/", root[0].Path)
	require.Equal(t, "readme.md", root[1].Name)

	models, err := s.List(ctx, "models")
	require.NoError(t, err)
	require.Len(t, models, 2)
	require.Equal(t, "models/a.bim", models[0].Path)
	require.Equal(t, "models/mep/", models[1].Path)
	require.Equal(t, "mep", models[1].Name)
}
