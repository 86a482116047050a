package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// FileStore keeps each collection in <dir>/<collection>.json. Saves go
// through a temp file and rename so a crash never leaves a partial write
// visible. A per-collection mutex serializes concurrent saves.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	logger zerolog.Logger
}

// NewFileStore creates the data directory if needed and returns a store.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{
		dir:    dir,
		locks:  make(map[string]*sync.Mutex),
		logger: logger.With().Str("component", "filestore").Logger(),
	}, nil
}

// Dir returns the backing data directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) lock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	return l
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) Load(_ context.Context, collection string) ([]byte, error) {
	data, err := os.ReadFile(s.path(collection))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	return data, nil
}

func (s *FileStore) Save(_ context.Context, collection string, data []byte) error {
	l := s.lock(collection)
	l.Lock()
	defer l.Unlock()

	path := s.path(collection)
	tmp, err := os.CreateTemp(s.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", collection, err)
	}

	s.logger.Debug().Str("collection", collection).Int("bytes", len(data)).Msg("collection saved")
	return nil
}
