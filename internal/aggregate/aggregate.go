package aggregate

import "github.com/sourceplane/gateci/internal/model"

// Aggregate reports the overall conclusion for a set of terminal job
// results: failure iff at least one job failed. Skipped and cancelled jobs
// never count as failures. It is always computed, even when upstream jobs
// failed, so the run can observe and report them.
func Aggregate(results map[string]model.Conclusion) model.Conclusion {
	for _, conclusion := range results {
		if conclusion == model.ConclusionFailure {
			return model.ConclusionFailure
		}
	}
	return model.ConclusionSuccess
}
