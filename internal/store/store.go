// Package store holds the uploaded file for a split session and mirrors its
// metadata into a session-scoped key/value store.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Lllllllleong/pdfsplitflow/internal/models"
)

// MetadataKey is the session key holding the JSON array of stored file metadata.
const MetadataKey = "pdfsplit.storedFiles"

// KV is the session-scoped key/value collaborator.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Dropper is implemented by KVs that can discard every entry of their
// session at once.
type Dropper interface {
	Drop(ctx context.Context) error
}

// FileStore owns the in-memory uploaded files. Only their metadata reaches the KV.
type FileStore struct {
	mu    sync.Mutex
	kv    KV
	files []models.UploadedFile
}

// NewFileStore returns an empty store backed by kv.
func NewFileStore(kv KV) *FileStore {
	return &FileStore{kv: kv}
}

// StoreFiles replaces the stored files and overwrites the metadata mirror.
// The in-memory replacement always happens; a returned error wraps
// models.ErrStorage and only means the mirror could not be written.
func (s *FileStore) StoreFiles(ctx context.Context, files []models.UploadedFile) error {
	s.mu.Lock()
	s.files = append([]models.UploadedFile(nil), files...)
	meta := make([]models.SessionFileMetadata, len(files))
	for i := range files {
		meta[i] = files[i].Metadata()
	}
	s.mu.Unlock()

	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", models.ErrStorage, err)
	}
	if err := s.kv.Set(ctx, MetadataKey, string(payload)); err != nil {
		return fmt.Errorf("%w: failed to write metadata: %v", models.ErrStorage, err)
	}
	return nil
}

// GetStoredFiles returns the in-memory files. It never rebuilds them from
// the metadata mirror.
func (s *FileStore) GetStoredFiles() []models.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UploadedFile(nil), s.files...)
}

// ClearStoredFiles drops the files and removes the metadata key.
func (s *FileStore) ClearStoredFiles(ctx context.Context) error {
	s.mu.Lock()
	s.files = nil
	s.mu.Unlock()

	if err := s.kv.Remove(ctx, MetadataKey); err != nil {
		return fmt.Errorf("%w: failed to remove metadata: %v", models.ErrStorage, err)
	}
	return nil
}

// Discard drops the files and, when the KV is a Dropper, everything it holds
// for the session. Other KVs only lose the metadata key.
func (s *FileStore) Discard(ctx context.Context) error {
	d, ok := s.kv.(Dropper)
	if !ok {
		return s.ClearStoredFiles(ctx)
	}
	s.mu.Lock()
	s.files = nil
	s.mu.Unlock()

	if err := d.Drop(ctx); err != nil {
		return fmt.Errorf("%w: failed to drop session entries: %v", models.ErrStorage, err)
	}
	return nil
}

// StoredMetadata reads the mirror back. A missing key yields nil, nil.
func (s *FileStore) StoredMetadata(ctx context.Context) ([]models.SessionFileMetadata, error) {
	raw, ok, err := s.kv.Get(ctx, MetadataKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read metadata: %v", models.ErrStorage, err)
	}
	if !ok {
		return nil, nil
	}
	var meta []models.SessionFileMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("%w: corrupt metadata: %v", models.ErrStorage, err)
	}
	return meta, nil
}
