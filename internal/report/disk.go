package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DiskStore writes each Launch as a JSON file in a directory that is
// created on the first Save.
type DiskStore struct {
	mu      sync.Mutex
	dir     string
	created bool
}

// NewDiskStore creates a DiskStore rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Dir returns the directory records are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes a Launch as a JSON file to disk.
func (s *DiskStore) Save(launch *Launch) error {
	if launch.ID == "" {
		return fmt.Errorf("saving launch: empty id")
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(launch, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling launch %s: %w", launch.ID, err)
	}
	if err := os.WriteFile(s.path(launch.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing launch %s: %w", launch.ID, err)
	}
	return nil
}

// Load reads a Launch from disk.
func (s *DiskStore) Load(runID string) (*Launch, error) {
	if runID == "" || strings.ContainsAny(runID, `/\`) {
		return nil, fmt.Errorf("invalid run id %q", runID)
	}
	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, fmt.Errorf("reading launch %s: %w", runID, err)
	}
	var launch Launch
	if err := json.Unmarshal(data, &launch); err != nil {
		return nil, fmt.Errorf("unmarshalling launch %s: %w", runID, err)
	}
	return &launch, nil
}

// List reads every record in the directory, newest first. Unreadable
// files are skipped.
func (s *DiskStore) List(limit int) ([]*Launch, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing launches: %w", err)
	}

	var out []*Launch
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		launch, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		out = append(out, launch)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *DiskStore) path(runID string) string {
	return filepath.Join(s.dir, runID+".json")
}

func (s *DiskStore) ensureDir() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created {
		return nil
	}
	if s.dir == "" {
		dir, err := os.MkdirTemp("", "nbtools-launches-*")
		if err != nil {
			return fmt.Errorf("creating launch directory: %w", err)
		}
		s.dir = dir
	} else if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating launch directory: %w", err)
	}
	s.created = true
	return nil
}
