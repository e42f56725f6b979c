package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"flatfile-shop/internal/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Store loads and saves whole named collections. Implementations keep no
// record state between calls.
type Store interface {
	Load(ctx context.Context, collection string, out any) error
	Save(ctx context.Context, collection string, records any) error
}

var FileStoreTracer = otel.Tracer("FileStore")

// FileStore keeps each collection as a pretty-printed JSON array in
// <dir>/<collection>.json.
type FileStore struct {
	dir     string
	metrics *metrics.Metrics
}

func NewFileStore(dir string, m *metrics.Metrics) *FileStore {
	return &FileStore{dir: dir, metrics: m}
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Load decodes the collection file into out. A missing or blank file leaves
// out untouched.
func (s *FileStore) Load(ctx context.Context, collection string, out any) (err error) {
	_, span := FileStoreTracer.Start(ctx, "FileStore.Load")
	span.SetAttributes(attribute.String("store.collection", collection))
	defer func() {
		s.metrics.ObserveStoreOp(collection, "load", err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load failed")
		}
		span.End()
	}()

	data, err := os.ReadFile(s.Path(collection))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", collection, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

// Save overwrites the collection file with records, indented by two spaces.
// The content goes to a temp file first and is renamed into place.
func (s *FileStore) Save(ctx context.Context, collection string, records any) (err error) {
	_, span := FileStoreTracer.Start(ctx, "FileStore.Save")
	span.SetAttributes(attribute.String("store.collection", collection))
	defer func() {
		s.metrics.ObserveStoreOp(collection, "save", err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "save failed")
		}
		span.End()
	}()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	path := s.Path(collection)
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
