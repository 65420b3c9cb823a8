package filter

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourceplane/gateci/internal/model"
)

// Results maps filter rule names to whether any changed file matched.
type Results map[string]bool

// Evaluate computes the per-rule match signal over the changed-file set.
// When comparable is false (no diff base could be resolved), every rule
// reports true: the pipeline fails open rather than silently skipping
// required checks.
func Evaluate(rules []model.FilterRule, changed []string, comparable bool) (Results, error) {
	results := make(Results, len(rules))
	for _, rule := range rules {
		if !comparable {
			results[rule.Name] = true
			continue
		}
		matched, err := ruleMatches(rule, changed)
		if err != nil {
			return nil, err
		}
		results[rule.Name] = matched
	}
	return results, nil
}

// ruleMatches reports whether any pattern of the rule matches any changed file
func ruleMatches(rule model.FilterRule, changed []string) (bool, error) {
	for _, pattern := range rule.Patterns {
		for _, file := range changed {
			ok, err := doublestar.Match(pattern, file)
			if err != nil {
				return false, fmt.Errorf("filter rule %s has invalid pattern %q: %w", rule.Name, pattern, err)
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}
