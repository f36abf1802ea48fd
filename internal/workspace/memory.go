package workspace

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store. It is the default for tests and for
// delegation runs that should not touch persistent project state.
type MemStore struct {
	mu     sync.RWMutex
	byID   map[string]*FileRecord
	byPath map[string]*FileRecord
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		byID:   make(map[string]*FileRecord),
		byPath: make(map[string]*FileRecord),
	}
}

func (s *MemStore) FindByPath(p string) (*FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byPath[CleanPath(p)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemStore) Create(rec *FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Path == "" {
		return fmt.Errorf("workspace: empty path")
	}
	if _, exists := s.byPath[rec.Path]; exists {
		return fmt.Errorf("workspace: path already exists: %s", rec.Path)
	}

	cp := *rec
	s.byID[cp.ID] = &cp
	s.byPath[cp.Path] = &cp
	return nil
}

func (s *MemStore) Update(id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}

	if patch.Path != nil {
		newPath := CleanPath(*patch.Path)
		if newPath != rec.Path {
			if _, exists := s.byPath[newPath]; exists {
				return fmt.Errorf("workspace: path already exists: %s", newPath)
			}
			delete(s.byPath, rec.Path)
			rec.Path = newPath
			rec.ParentPath = parentOf(newPath)
			s.byPath[newPath] = rec
		}
	}
	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	if patch.Content != nil {
		rec.Content = *patch.Content
	}
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStore) List(parentPath string, recursive bool) ([]FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parentPath = CleanPath(parentPath)
	var out []FileRecord
	for _, rec := range s.byPath {
		if recursive {
			if !isUnder(rec.Path, parentPath) {
				continue
			}
		} else if !directChild(rec.Path, parentPath) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
