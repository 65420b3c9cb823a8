package model

// Pipeline is the top-level declarative pipeline definition (k8s-style format)
type Pipeline struct {
	APIVersion       string       `yaml:"apiVersion" json:"apiVersion"`
	Kind             string       `yaml:"kind" json:"kind"`
	Metadata         Metadata     `yaml:"metadata" json:"metadata"`
	TrunkBranch      string       `yaml:"trunkBranch" json:"trunkBranch"`
	ConcurrencyGroup string       `yaml:"concurrencyGroup,omitempty" json:"concurrencyGroup,omitempty"`
	Filters          []FilterRule `yaml:"filters" json:"filters"`
	Jobs             []JobSpec    `yaml:"jobs" json:"jobs"`
}

// Metadata holds standard object metadata
type Metadata struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// FilterRule names an ordered set of glob patterns evaluated against the
// changed-file set. A rule matches if any pattern matches any changed file.
type FilterRule struct {
	Name     string   `yaml:"name" json:"name"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// JobSpec defines one gated job with its steps and optional matrix
type JobSpec struct {
	Name     string        `yaml:"name" json:"name"`
	Needs    []string      `yaml:"needs,omitempty" json:"needs,omitempty"`
	When     WhenClause    `yaml:"when" json:"when"`
	Matrix   *MatrixSpec   `yaml:"matrix,omitempty" json:"matrix,omitempty"`
	Steps    []Step        `yaml:"steps" json:"steps"`
	Artifact *ArtifactSpec `yaml:"artifact,omitempty" json:"artifact,omitempty"`
}

// WhenClause is the job's run-predicate: the event kinds it admits, OR-ed
// with the trunk-push override, AND-ed with the named path filter (if any).
type WhenClause struct {
	Events []EventKind `yaml:"events,omitempty" json:"events,omitempty"`
	Filter string      `yaml:"filter,omitempty" json:"filter,omitempty"`
}

// Admits reports whether the clause allows the given event kind. An empty
// event list admits push, pull_request, and merge_group.
func (w WhenClause) Admits(kind EventKind) bool {
	if kind == EventWorkflowCompletion {
		return false
	}
	if len(w.Events) == 0 {
		return true
	}
	for _, ev := range w.Events {
		if ev == kind {
			return true
		}
	}
	return false
}

// MatrixSpec parameterizes a job over the Cartesian product of axis values.
// Include entries layer on top of the product: they extend or override
// matching points rather than filter them.
type MatrixSpec struct {
	Axes    map[string][]string `yaml:"axes" json:"axes"`
	Include []map[string]string `yaml:"include,omitempty" json:"include,omitempty"`
}

// Step is a single execution unit within a job instance
type Step struct {
	Name            string       `yaml:"name" json:"name"`
	Run             string       `yaml:"run,omitempty" json:"run,omitempty"`
	Uses            string       `yaml:"uses,omitempty" json:"uses,omitempty"`
	If              string       `yaml:"if,omitempty" json:"if,omitempty"`
	ContinueOnError bool         `yaml:"continueOnError,omitempty" json:"continueOnError,omitempty"`
	Timeout         string       `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Install         *InstallSpec `yaml:"install,omitempty" json:"install,omitempty"`
}

// InstallSpec marks a step as a cache-gated dependency install. The cache key
// is derived from the OS, the tool version, and a hash of the lock file; a
// hit skips the step entirely.
type InstallSpec struct {
	Lockfile string `yaml:"lockfile" json:"lockfile"`
	Tool     string `yaml:"tool,omitempty" json:"tool,omitempty"`
	Path     string `yaml:"path" json:"path"`
}

// ArtifactSpec declares a named artifact an instance may persist on
// completion, visible to later independent runs via the artifact store.
type ArtifactSpec struct {
	Name  string   `yaml:"name" json:"name"`
	Paths []string `yaml:"paths" json:"paths"`
	When  string   `yaml:"when,omitempty" json:"when,omitempty"`
}
