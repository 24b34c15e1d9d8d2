package objectstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
)

// MemoryStore keeps blobs in process. It backs local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]models.Blob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]models.Blob)}
}

func (m *MemoryStore) Put(_ context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read object %s: %w", key, err)
	}

	m.mu.Lock()
	m.objects[key] = models.Blob{Key: key, ContentType: contentType, Data: data}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (*models.Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.objects[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	data := make([]byte, len(blob.Data))
	copy(data, blob.Data)
	blob.Data = data
	return &blob, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.objects[key]
	return ok, nil
}

// New picks the S3 store when cfg is complete and falls back to memory
func New(ctx context.Context, cfg Config, logger *slog.Logger) (repositories.BlobRepository, error) {
	if !cfg.Enabled() {
		logger.Warn("Object storage not configured, blobs are kept in memory")
		return NewMemoryStore(), nil
	}

	store, err := NewS3Store(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Object storage enabled", "bucket", cfg.Bucket, "endpoint", cfg.Endpoint)
	return store, nil
}
