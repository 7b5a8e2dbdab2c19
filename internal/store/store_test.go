package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/pdfsplitflow/internal/models"
)

// failingKV fails every call.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("quota exceeded")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("quota exceeded") }
func (failingKV) Remove(context.Context, string) error      { return errors.New("quota exceeded") }

func TestStoreFiles_MirrorsMetadataOnly(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewFileStore(kv)

	file := models.UploadedFile{ID: "abc", Name: "report.pdf", Size: 4, Bytes: []byte("%PDF")}
	require.NoError(t, s.StoreFiles(ctx, []models.UploadedFile{file}))

	raw, ok, err := kv.Get(ctx, MetadataKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"abc","name":"report.pdf","size":4}]`, raw)
	assert.NotContains(t, raw, "%PDF")

	stored := s.GetStoredFiles()
	require.Len(t, stored, 1)
	assert.Equal(t, file, stored[0])
}

func TestStoreFiles_ReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(NewMemoryKV())

	require.NoError(t, s.StoreFiles(ctx, []models.UploadedFile{{ID: "1", Name: "a.pdf"}, {ID: "2", Name: "b.pdf"}}))
	require.NoError(t, s.StoreFiles(ctx, []models.UploadedFile{{ID: "3", Name: "c.pdf"}}))

	stored := s.GetStoredFiles()
	require.Len(t, stored, 1)
	assert.Equal(t, "3", stored[0].ID)

	meta, err := s.StoredMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SessionFileMetadata{{ID: "3", Name: "c.pdf"}}, meta)
}

func TestClearStoredFiles(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewFileStore(kv)
	require.NoError(t, s.StoreFiles(ctx, []models.UploadedFile{{ID: "1", Name: "a.pdf"}}))

	require.NoError(t, s.ClearStoredFiles(ctx))

	assert.Empty(t, s.GetStoredFiles())
	_, ok, err := kv.Get(ctx, MetadataKey)
	require.NoError(t, err)
	assert.False(t, ok)

	meta, err := s.StoredMetadata(ctx)
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestStorageFailuresKeepMemoryState(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(failingKV{})

	err := s.StoreFiles(ctx, []models.UploadedFile{{ID: "1", Name: "a.pdf"}})
	assert.ErrorIs(t, err, models.ErrStorage)
	assert.Len(t, s.GetStoredFiles(), 1)

	err = s.ClearStoredFiles(ctx)
	assert.ErrorIs(t, err, models.ErrStorage)
	assert.Empty(t, s.GetStoredFiles())

	_, err = s.StoredMetadata(ctx)
	assert.ErrorIs(t, err, models.ErrStorage)
}

func TestGetStoredFiles_ReturnsCopy(t *testing.T) {
	s := NewFileStore(NewMemoryKV())
	require.NoError(t, s.StoreFiles(context.Background(), []models.UploadedFile{{ID: "1"}}))

	got := s.GetStoredFiles()
	got[0].ID = "changed"
	assert.Equal(t, "1", s.GetStoredFiles()[0].ID)
}

func TestDiscard_DropsEverySessionEntry(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "other", "x"))
	s := NewFileStore(kv)
	require.NoError(t, s.StoreFiles(ctx, []models.UploadedFile{{ID: "1", Name: "a.pdf"}}))

	require.NoError(t, s.Discard(ctx))

	assert.Empty(t, s.GetStoredFiles())
	assert.Zero(t, kv.Len())
}

func TestDiscard_FallsBackToClear(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(failingKV{})
	_ = s.StoreFiles(ctx, []models.UploadedFile{{ID: "1"}})

	err := s.Discard(ctx)
	assert.ErrorIs(t, err, models.ErrStorage)
	assert.Empty(t, s.GetStoredFiles())
}
