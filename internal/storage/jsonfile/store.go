package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sandevgo/warden/pkg/log"
)

// Store keeps one JSON document per dataset in dir, named <dataset>.json.
type Store struct {
	dir string
	mu  sync.RWMutex
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Path(dataset string) string {
	return filepath.Join(s.dir, dataset+".json")
}

// Load returns the raw document, or nil when the file is missing or empty.
func (s *Store) Load(ctx context.Context, dataset string) ([]byte, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.Path(dataset))
	s.mu.RUnlock()

	if err != nil {
		if os.IsNotExist(err) {
			log.FromCtx(ctx).Debug().Str("dataset", dataset).Msg("snapshot file not found, starting empty")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s snapshot: %w", dataset, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// Save replaces the document via a temp file and rename so readers never see a partial write.
func (s *Store) Save(ctx context.Context, dataset string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(dataset)
	tmp, err := os.CreateTemp(s.dir, "."+dataset+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s snapshot: %w", dataset, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s snapshot: %w", dataset, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s snapshot: %w", dataset, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s snapshot: %w", dataset, err)
	}
	return nil
}
