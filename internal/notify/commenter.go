package notify

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Commenter posts or updates a single identifying comment on a pull
// request. Upsert is idempotent per (prNumber, title): a repeated call
// updates the existing comment instead of creating a duplicate.
type Commenter interface {
	Upsert(prNumber int, title string, bodyParts []string) (commentID string, err error)
}

// FileCommenter is a disk-backed Commenter used for local operation and
// tests; one YAML document per (pr, title) pair.
type FileCommenter struct {
	dir string
}

// NewFileCommenter creates a commenter storing comments under dir.
func NewFileCommenter(dir string) (*FileCommenter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create comments dir: %w", err)
	}
	return &FileCommenter{dir: dir}, nil
}

type storedComment struct {
	ID       string `yaml:"id"`
	PRNumber int    `yaml:"prNumber"`
	Title    string `yaml:"title"`
	Body     string `yaml:"body"`
	Updates  int    `yaml:"updates"`
}

// Upsert creates or updates the comment keyed by (prNumber, title).
func (c *FileCommenter) Upsert(prNumber int, title string, bodyParts []string) (string, error) {
	path := c.commentPath(prNumber, title)

	comment := storedComment{
		ID:       uuid.NewString(),
		PRNumber: prNumber,
		Title:    title,
	}
	if data, err := os.ReadFile(path); err == nil {
		var existing storedComment
		if err := yaml.Unmarshal(data, &existing); err == nil && existing.ID != "" {
			comment.ID = existing.ID
			comment.Updates = existing.Updates + 1
		}
	}
	comment.Body = strings.Join(append([]string{title}, bodyParts...), "\n\n")

	data, err := yaml.Marshal(&comment)
	if err != nil {
		return "", fmt.Errorf("failed to marshal comment: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write comment: %w", err)
	}
	return comment.ID, nil
}

// Get returns the stored comment for (prNumber, title), if any.
func (c *FileCommenter) Get(prNumber int, title string) (id, body string, updates int, ok bool) {
	data, err := os.ReadFile(c.commentPath(prNumber, title))
	if err != nil {
		return "", "", 0, false
	}
	var comment storedComment
	if err := yaml.Unmarshal(data, &comment); err != nil {
		return "", "", 0, false
	}
	return comment.ID, comment.Body, comment.Updates, true
}

func (c *FileCommenter) commentPath(prNumber int, title string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '-'
	}, title)
	return filepath.Join(c.dir, fmt.Sprintf("pr%d-%s.yaml", prNumber, slug))
}

// CLICommenter posts comments through the gh CLI. Idempotency is delegated
// to gh: --edit-last --create-if-none updates the caller's previous comment
// on the PR or creates one when none exists.
type CLICommenter struct {
	Repo string
}

// Upsert creates or updates the PR comment via gh.
func (c *CLICommenter) Upsert(prNumber int, title string, bodyParts []string) (string, error) {
	body := strings.Join(append([]string{title}, bodyParts...), "\n\n")

	args := []string{"pr", "comment", fmt.Sprintf("%d", prNumber), "--body", body, "--edit-last", "--create-if-none"}
	if c.Repo != "" {
		args = append(args, "--repo", c.Repo)
	}

	cmd := exec.Command("gh", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("gh pr comment failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return strings.TrimSpace(string(output)), nil
}
