package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"StockWatch/internal/model"
)

// FileStore keeps the watchlist as a JSON array of {code, name}.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	defaults []model.FavoriteEntry
}

// NewFileStore creates a store backed by filePath. The file is created with
// defaults on first access.
func NewFileStore(filePath string, defaults []model.FavoriteEntry) *FileStore {
	if defaults == nil {
		defaults = DefaultEntries
	}
	return &FileStore{filePath: filePath, defaults: cloneEntries(defaults)}
}

func (s *FileStore) List(_ context.Context) ([]model.FavoriteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Add(_ context.Context, entry model.FavoriteEntry) ([]model.FavoriteEntry, error) {
	entry, err := validate(entry)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	if indexOf(list, entry.Code) >= 0 {
		return nil, ErrDuplicate
	}
	list = append(list, entry)
	return list, s.save(list)
}

func (s *FileStore) Remove(_ context.Context, code string) ([]model.FavoriteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	kept := list[:0]
	for _, f := range list {
		if f.Code != code {
			kept = append(kept, f)
		}
	}
	return kept, s.save(kept)
}

func (s *FileStore) Reorder(_ context.Context, codes []string) ([]model.FavoriteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	ordered := reorder(list, codes)
	return ordered, s.save(ordered)
}

func (s *FileStore) Close() error { return nil }

// load reads the list, writing the defaults first if the file does not exist yet.
func (s *FileStore) load() ([]model.FavoriteEntry, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read favorites: %w", err)
		}
		list := cloneEntries(s.defaults)
		if err := s.save(list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var list []model.FavoriteEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse favorites: %w", err)
	}
	if list == nil {
		list = []model.FavoriteEntry{}
	}
	return list, nil
}

func (s *FileStore) save(list []model.FavoriteEntry) error {
	if dir := filepath.Dir(s.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	return nil
}
