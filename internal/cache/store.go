package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Store is a disk-backed, content-keyed cache for installed dependency
// trees. Lookup is a pure function of the key; a miss never blocks a job, it
// only removes the skip-install fast path. Concurrent writers for the same
// key may race, but the key already encodes content identity, so
// last-writer-wins is acceptable.
type Store struct {
	root string
}

// NewStore creates a cache store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Key derives the deterministic cache key from the OS, the tool version, and
// a hash of the dependency lock file.
func Key(goos, toolVersion, lockfilePath string) (string, error) {
	digest, err := hashFile(lockfilePath)
	if err != nil {
		return "", fmt.Errorf("failed to hash lock file %s: %w", lockfilePath, err)
	}
	if goos == "" {
		goos = runtime.GOOS
	}
	return fmt.Sprintf("%s-%s-%s", goos, toolVersion, digest), nil
}

// Hit reports whether a complete entry exists for the key. Entries without a
// completion marker (e.g. from a cancelled run) are treated as misses.
func (s *Store) Hit(key string) bool {
	_, err := os.Stat(filepath.Join(s.root, key, "complete"))
	return err == nil
}

// Save copies the installed tree at path into the cache under key. The
// completion marker is written last, by atomic rename, so readers never see
// a partially written entry as a hit.
func (s *Store) Save(key, path string) error {
	entryDir := filepath.Join(s.root, key)
	if err := os.MkdirAll(entryDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}

	if err := copyTree(path, filepath.Join(entryDir, "data")); err != nil {
		return fmt.Errorf("failed to populate cache entry %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(entryDir, ".marker-*")
	if err != nil {
		return fmt.Errorf("failed to create cache marker: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache marker: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(entryDir, "complete")); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit cache entry %s: %w", key, err)
	}
	return nil
}

// Restore copies the cached tree for key back to path.
func (s *Store) Restore(key, path string) error {
	if !s.Hit(key) {
		return fmt.Errorf("cache entry not found: %s", key)
	}
	return copyTree(filepath.Join(s.root, key, "data"), path)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
