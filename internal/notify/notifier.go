package notify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sourceplane/gateci/internal/artifact"
	"github.com/sourceplane/gateci/internal/model"
)

// Notifier reacts to the completion of a whole pipeline run: when a
// pull-request-triggered run succeeded, it fetches that run's coverage
// artifact and forwards its contents to the comment collaborator. Delivery
// is at-least-once, so the whole path is idempotent.
type Notifier struct {
	Artifacts    *artifact.Store
	Commenter    Commenter
	ArtifactName string
	Stdout       io.Writer
}

// NewNotifier creates a notifier reading artifactName from the given store.
func NewNotifier(artifacts *artifact.Store, commenter Commenter, artifactName string, stdout io.Writer) *Notifier {
	return &Notifier{
		Artifacts:    artifacts,
		Commenter:    commenter,
		ArtifactName: artifactName,
		Stdout:       stdout,
	}
}

// HandleCompletion processes one workflow_completion event. Runs that did
// not succeed, or whose original trigger was not a pull request, are
// ignored. A missing artifact is a silent no-op (logged, not escalated): the
// governing condition already checked for overall success, so absence only
// means the coverage-enabled instance itself was skipped.
func (n *Notifier) HandleCompletion(record *model.RunRecord) error {
	if record == nil {
		return fmt.Errorf("run record cannot be nil")
	}
	if record.Conclusion != model.ConclusionSuccess {
		fmt.Fprintf(n.Stdout, "□ Run %s concluded %s; nothing to report\n", record.RunID, record.Conclusion)
		return nil
	}
	if record.Event.Kind != model.EventPullRequest {
		fmt.Fprintf(n.Stdout, "□ Run %s was not pull-request-triggered; nothing to report\n", record.RunID)
		return nil
	}

	destDir, err := os.MkdirTemp("", "gateci-artifact-*")
	if err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}
	defer os.RemoveAll(destDir)

	// Fetch from that specific completed run, never "latest"
	files, err := n.Artifacts.Download(record.Workflow, record.RunID, n.ArtifactName, destDir)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			fmt.Fprintf(n.Stdout, "□ No %s artifact for run %s; skipping comment\n", n.ArtifactName, record.RunID)
			return nil
		}
		return err
	}

	parts := make([]string, 0, len(files))
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(destDir, rel))
		if err != nil {
			return fmt.Errorf("failed to read artifact file %s: %w", rel, err)
		}
		parts = append(parts, string(data))
	}

	title := fmt.Sprintf("## Coverage report: %s", record.Workflow)
	commentID, err := n.Commenter.Upsert(record.Event.PRNumber, title, parts)
	if err != nil {
		return fmt.Errorf("failed to upsert coverage comment: %w", err)
	}

	fmt.Fprintf(n.Stdout, "✓ Coverage comment %s upserted on PR #%d\n", commentID, record.Event.PRNumber)
	return nil
}
