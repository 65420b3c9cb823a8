package runner

import (
	"fmt"
	"sort"

	"github.com/sourceplane/gateci/internal/model"
)

// Graph is the needs-relation over a pipeline's jobs. A pipeline with a
// dependency cycle is rejected before anything runs; acyclic pipelines get a
// deterministic execution order.
type Graph struct {
	jobs map[string]model.JobSpec
}

// NewGraph indexes the job specs by name.
func NewGraph(jobs []model.JobSpec) *Graph {
	index := make(map[string]model.JobSpec, len(jobs))
	for _, job := range jobs {
		index[job.Name] = job
	}
	return &Graph{jobs: index}
}

// DetectCycles returns an error when the needs edges form a cycle.
func (g *Graph) DetectCycles() error {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	for name := range g.jobs {
		if !visited[name] {
			if g.hasCycleDFS(name, visited, recStack) {
				return fmt.Errorf("job needs form a cycle")
			}
		}
	}

	return nil
}

// hasCycleDFS walks needs edges depth-first; a node revisited while still on
// the recursion path closes a cycle
func (g *Graph) hasCycleDFS(node string, visited, recStack map[string]bool) bool {
	visited[node] = true
	recStack[node] = true

	job, exists := g.jobs[node]
	if !exists {
		return false
	}

	for _, dep := range job.Needs {
		if !visited[dep] {
			if g.hasCycleDFS(dep, visited, recStack) {
				return true
			}
		} else if recStack[dep] {
			return true
		}
	}

	recStack[node] = false
	return false
}

// TopologicalSort returns job names in execution order using Kahn's
// algorithm. The ready queue is kept sorted so the order is deterministic.
func (g *Graph) TopologicalSort() ([]string, error) {
	dependents := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range g.jobs {
		inDegree[name] = 0
		dependents[name] = make([]string, 0)
	}

	for name, job := range g.jobs {
		for _, dep := range job.Needs {
			if _, exists := g.jobs[dep]; !exists {
				return nil, fmt.Errorf("job %s depends on unknown job %s", name, dep)
			}
			dependents[dep] = append(dependents[dep], name)
			inDegree[name]++
		}
	}

	queue := make([]string, 0)
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	sorted := make([]string, 0, len(g.jobs))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		sort.Strings(queue)
	}

	if len(sorted) != len(g.jobs) {
		return nil, fmt.Errorf("jobs left unordered, needs likely form a cycle")
	}

	return sorted, nil
}
