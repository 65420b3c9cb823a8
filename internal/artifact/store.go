package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no complete artifact exists for the requested
// (workflow, runID, name) coordinates.
var ErrNotFound = errors.New("artifact not found")

// Store is a disk-backed artifact store. Artifacts are immutable once
// uploaded, scoped to one run, and addressable by (workflow, runID, name):
// the only channel between a completed run and later independent runs.
type Store struct {
	root string
}

// NewStore creates an artifact store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Upload collects the files matching the path globs (relative to workDir)
// into a new artifact and returns its ID. The completion marker is written
// last so a partially uploaded artifact is never downloadable.
func (s *Store) Upload(workflow, runID, name, workDir string, globs []string) (string, error) {
	files, err := collectFiles(workDir, globs)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("artifact %s matched no files", name)
	}

	artifactID := uuid.NewString()
	dir := s.entryDir(workflow, runID, name)
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact entry: %w", err)
	}

	for _, rel := range files {
		if err := copyFile(filepath.Join(workDir, rel), filepath.Join(dataDir, rel)); err != nil {
			return "", fmt.Errorf("failed to store artifact file %s: %w", rel, err)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "id"), []byte(artifactID), 0o644); err != nil {
		return "", fmt.Errorf("failed to commit artifact %s: %w", name, err)
	}
	return artifactID, nil
}

// Download copies the artifact's files into destDir and returns their
// relative paths. The lookup targets one specific completed run, never
// "latest". Returns ErrNotFound when the artifact was never produced.
func (s *Store) Download(workflow, runID, name, destDir string) ([]string, error) {
	dir := s.entryDir(workflow, runID, name)
	if _, err := os.Stat(filepath.Join(dir, "id")); err != nil {
		return nil, fmt.Errorf("%w: %s (workflow %s, run %s)", ErrNotFound, name, workflow, runID)
	}

	dataDir := filepath.Join(dir, "data")
	var files []string
	err := filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}
		if err := copyFile(path, filepath.Join(destDir, rel)); err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download artifact %s: %w", name, err)
	}
	return files, nil
}

func (s *Store) entryDir(workflow, runID, name string) string {
	return filepath.Join(s.root, workflow, runID, name)
}

// collectFiles resolves the path globs against workDir
func collectFiles(workDir string, globs []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range globs {
		matches, err := doublestar.Glob(os.DirFS(workDir), pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid artifact path glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(filepath.Join(workDir, match))
			if err != nil || info.IsDir() {
				continue
			}
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}
	return files, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
