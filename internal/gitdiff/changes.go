package gitdiff

import (
	"os/exec"
	"strings"
)

// Detector computes the set of files changed between the trigger's base and
// head revisions by shelling out to git.
type Detector struct {
	baseRef string // ref to compare against (e.g. "main", a merge base SHA)
	workDir string

	// runGit is swappable for tests; defaults to exec.Command("git", ...)
	runGit func(args ...string) ([]byte, error)
}

// NewDetector creates a detector comparing HEAD against baseRef in workDir.
func NewDetector(baseRef, workDir string) *Detector {
	d := &Detector{
		baseRef: baseRef,
		workDir: workDir,
	}
	d.runGit = func(args ...string) ([]byte, error) {
		cmd := exec.Command("git", args...)
		cmd.Dir = d.workDir
		return cmd.Output()
	}
	return d
}

// Changed returns the changed-file set and whether a comparable base was
// found. comparable=false means no diff base could be resolved; callers must
// fail open (treat every filter rule as matched) so validation still runs on
// first-ever pushes and unknown event shapes.
func (d *Detector) Changed() (files []string, comparable bool, err error) {
	compareRef := d.baseRef
	if compareRef == "" {
		return nil, false, nil
	}

	// Try the base ref directly first
	output, err := d.runGit("diff", "--name-only", compareRef+"...HEAD")

	// If the ref fails, try origin/<base> (common in CI checkouts)
	if err != nil {
		output, err = d.runGit("diff", "--name-only", "origin/"+compareRef+"...HEAD")
	}

	// Last resort: resolve a merge base explicitly (works in detached HEAD)
	if err != nil {
		mergeBase, mergeErr := d.runGit("merge-base", "HEAD", compareRef)
		if mergeErr != nil {
			mergeBase, mergeErr = d.runGit("merge-base", "HEAD", "origin/"+compareRef)
		}
		if mergeErr != nil {
			// No comparable base at all: fail open
			return nil, false, nil
		}
		baseSHA := strings.TrimSpace(string(mergeBase))
		output, err = d.runGit("diff", "--name-only", baseSHA)
		if err != nil {
			return nil, false, nil
		}
	}

	return splitFiles(output), true, nil
}

func splitFiles(output []byte) []string {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return []string{}
	}
	lines := strings.Split(trimmed, "\n")
	files := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			files = append(files, line)
		}
	}
	return files
}
