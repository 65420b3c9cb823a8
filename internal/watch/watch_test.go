package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralPrefix(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"skore/**", "skore"},
		{"skore/sklearn/*.py", filepath.Join("skore", "sklearn")},
		{"pyproject.toml", "pyproject.toml"},
		{"**/*.py", ""},
		{"docs/{a,b}/**", "docs"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, literalPrefix(tt.pattern), "pattern %q", tt.pattern)
	}
}

func TestRoots_DeduplicatesAndResolves(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "skore"), 0o755))

	roots := Roots(workDir, []string{"skore/**", "skore/*.py", "missing/**"})

	assert.Contains(t, roots, filepath.Join(workDir, "skore"))
	// Non-existent prefixes collapse to their parent directory
	assert.Contains(t, roots, workDir)
	assert.Len(t, roots, 2)
}

func TestRoots_EmptyPatternsFallBackToWorkDir(t *testing.T) {
	workDir := t.TempDir()
	assert.Equal(t, []string{workDir}, Roots(workDir, nil))
}

func TestWatcher_TriggersOnWriteAndDebounces(t *testing.T) {
	workDir := t.TempDir()

	triggered := make(chan struct{}, 8)
	watcher := &Watcher{
		Roots:    []string{workDir},
		Debounce: 50 * time.Millisecond,
		Stdout:   io.Discard,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func() error {
			triggered <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(workDir, "file.py"), []byte("x = 1\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-triggered:
	case <-ctx.Done():
		t.Fatal("watcher did not trigger")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// The burst of writes must have been coalesced
	assert.LessOrEqual(t, len(triggered), 1)
}
