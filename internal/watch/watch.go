package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-triggers a pipeline invocation when files under the watched
// roots change. Events are debounced: a burst of writes produces one
// invocation.
type Watcher struct {
	Roots    []string
	Debounce time.Duration
	Stdout   io.Writer
}

// Roots derives the directories to watch from filter-rule glob patterns:
// the longest literal prefix of each pattern, resolved against workDir.
func Roots(workDir string, patterns []string) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, pattern := range patterns {
		root := literalPrefix(pattern)
		abs := filepath.Join(workDir, root)
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			abs = filepath.Dir(abs)
		}
		if !seen[abs] {
			seen[abs] = true
			roots = append(roots, abs)
		}
	}
	if len(roots) == 0 {
		roots = []string{workDir}
	}
	return roots
}

// literalPrefix returns the pattern's leading path segments before any glob
// metacharacter
func literalPrefix(pattern string) string {
	segments := strings.Split(pattern, "/")
	var literal []string
	for _, segment := range segments {
		if strings.ContainsAny(segment, "*?[{") {
			break
		}
		literal = append(literal, segment)
	}
	return filepath.Join(literal...)
}

// Run watches the roots until ctx is done, invoking trigger after each
// debounced batch of filesystem events.
func (w *Watcher) Run(ctx context.Context, trigger func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range w.Roots {
		if err := addRecursive(watcher, root); err != nil {
			return err
		}
		fmt.Fprintf(w.Stdout, "□ Watching %s\n", root)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w.Stdout, "watch error: %v\n", err)
		case <-timerC:
			timer = nil
			timerC = nil
			if err := trigger(); err != nil {
				fmt.Fprintf(w.Stdout, "run failed: %v\n", err)
			}
		}
	}
}

// addRecursive watches root and all subdirectories
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
