package runstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourceplane/gateci/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrNoRuns is returned by Latest when no run record has been stored yet.
var ErrNoRuns = errors.New("no run records stored")

// Store persists run records so a later, independent invocation (the
// cross-run notifier) can resolve a specific completed run. It also holds
// the per-concurrency-group claim used for cooperative cancellation.
type Store struct {
	root string
}

// NewStore creates a run store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "runs"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run store: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "groups"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run store: %w", err)
	}
	return &Store{root: dir}, nil
}

// Save writes the record atomically (temp file + rename), so a reader never
// observes a torn record.
func (s *Store) Save(record *model.RunRecord) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	path := s.runPath(record.RunID)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".run-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp run record: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write run record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close run record: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit run record: %w", err)
	}
	return nil
}

// Get loads one run record by ID.
func (s *Store) Get(runID string) (*model.RunRecord, error) {
	data, err := os.ReadFile(s.runPath(runID))
	if err != nil {
		return nil, fmt.Errorf("failed to read run record %s: %w", runID, err)
	}
	var record model.RunRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse run record %s: %w", runID, err)
	}
	return &record, nil
}

// List returns all stored run records, most recent first.
func (s *Store) List() ([]*model.RunRecord, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "runs"))
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}

	var records []*model.RunRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		record, err := s.Get(strings.TrimSuffix(entry.Name(), ".yaml"))
		if err != nil {
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, nil
}

// Latest returns the most recently started run record.
func (s *Store) Latest() (*model.RunRecord, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRuns
	}
	return records[0], nil
}

// Claim marks runID as the current holder of the concurrency group. A newer
// trigger for the same group overwrites the claim; in-flight runs observe
// this at step boundaries and cancel cooperatively.
func (s *Store) Claim(group, runID string) error {
	if err := os.WriteFile(s.groupPath(group), []byte(runID), 0o644); err != nil {
		return fmt.Errorf("failed to claim concurrency group %s: %w", group, err)
	}
	return nil
}

// CurrentClaim returns the run currently holding the concurrency group, or
// "" when the group is unclaimed.
func (s *Store) CurrentClaim(group string) string {
	data, err := os.ReadFile(s.groupPath(group))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *Store) runPath(runID string) string {
	return filepath.Join(s.root, "runs", runID+".yaml")
}

func (s *Store) groupPath(group string) string {
	return filepath.Join(s.root, "groups", sanitize(group))
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, name)
}
