package runner

import (
	"testing"

	"github.com/sourceplane/gateci/internal/model"
)

func jobsFromNeeds(needs map[string][]string) []model.JobSpec {
	jobs := make([]model.JobSpec, 0, len(needs))
	for name, deps := range needs {
		jobs = append(jobs, model.JobSpec{Name: name, Needs: deps})
	}
	return jobs
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	graph := NewGraph(jobsFromNeeds(map[string][]string{
		"lint": {},
		"test": {"lint"},
		"docs": {"test"},
	}))

	sorted, err := graph.TopologicalSort()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if indexOf(sorted, "lint") >= indexOf(sorted, "test") {
		t.Errorf("expected lint before test, got %v", sorted)
	}
	if indexOf(sorted, "test") >= indexOf(sorted, "docs") {
		t.Errorf("expected test before docs, got %v", sorted)
	}
}

func TestTopologicalSort_Deterministic(t *testing.T) {
	jobs := jobsFromNeeds(map[string][]string{
		"b": {},
		"a": {},
		"c": {"a", "b"},
	})

	first, err := NewGraph(jobs).TopologicalSort()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := NewGraph(jobs).TopologicalSort()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("order not deterministic: %v vs %v", first, again)
			}
		}
	}
}

func TestTopologicalSort_UnknownDependency(t *testing.T) {
	graph := NewGraph(jobsFromNeeds(map[string][]string{
		"test": {"ghost"},
	}))

	if _, err := graph.TopologicalSort(); err == nil {
		t.Fatal("expected error for unknown dependency")
	}
}

func TestDetectCycles(t *testing.T) {
	graph := NewGraph(jobsFromNeeds(map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}))

	if err := graph.DetectCycles(); err == nil {
		t.Fatal("expected cycle detection error")
	}

	acyclic := NewGraph(jobsFromNeeds(map[string][]string{
		"a": {},
		"b": {"a"},
	}))
	if err := acyclic.DetectCycles(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
