package filter

import (
	"testing"

	"github.com/sourceplane/gateci/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_MatchesAnyPatternAgainstAnyFile(t *testing.T) {
	rules := []model.FilterRule{
		{Name: "backend", Patterns: []string{"skore/**", "pyproject.toml"}},
		{Name: "docs", Patterns: []string{"docs/**/*.md"}},
	}

	results, err := Evaluate(rules, []string{"skore/sklearn/report.py", "README.md"}, true)
	require.NoError(t, err)

	assert.True(t, results["backend"])
	assert.False(t, results["docs"])
}

func TestEvaluate_UnrelatedTopLevelFileMatchesNothing(t *testing.T) {
	rules := []model.FilterRule{
		{Name: "backend", Patterns: []string{"skore/**"}},
		{Name: "lockfiles", Patterns: []string{"requirements/*.txt"}},
	}

	results, err := Evaluate(rules, []string{"CONTRIBUTING.md"}, true)
	require.NoError(t, err)

	assert.False(t, results["backend"])
	assert.False(t, results["lockfiles"])
}

func TestEvaluate_FailsOpenWithoutComparableBase(t *testing.T) {
	rules := []model.FilterRule{
		{Name: "backend", Patterns: []string{"skore/**"}},
		{Name: "docs", Patterns: []string{"docs/**"}},
	}

	// No diff base: every rule must report true so validation still runs
	results, err := Evaluate(rules, nil, false)
	require.NoError(t, err)

	assert.True(t, results["backend"])
	assert.True(t, results["docs"])
}

func TestEvaluate_EmptyChangeSetMatchesNothing(t *testing.T) {
	rules := []model.FilterRule{
		{Name: "backend", Patterns: []string{"**"}},
	}

	results, err := Evaluate(rules, []string{}, true)
	require.NoError(t, err)
	assert.False(t, results["backend"])
}

func TestEvaluate_InvalidPattern(t *testing.T) {
	rules := []model.FilterRule{
		{Name: "broken", Patterns: []string{"[unclosed"}},
	}

	_, err := Evaluate(rules, []string{"anything.txt"}, true)
	assert.Error(t, err)
}
