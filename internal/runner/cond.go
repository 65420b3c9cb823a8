package runner

import (
	"fmt"
	"strings"
)

// EvalCondition evaluates a step or artifact condition expression.
//
// The language is deliberately small: the functions always(), success(), and
// failure(), equality comparisons of the form `key == 'value'` or
// `key != 'value'` over the instance context (event, matrix.<axis>), and
// conjunction with &&. An empty expression evaluates to success().
func EvalCondition(expr string, failed bool, vars map[string]string) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return !failed, nil
	}

	for _, clause := range strings.Split(expr, "&&") {
		ok, err := evalClause(strings.TrimSpace(clause), failed, vars)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalClause(clause string, failed bool, vars map[string]string) (bool, error) {
	switch clause {
	case "always()":
		return true, nil
	case "success()":
		return !failed, nil
	case "failure()":
		return failed, nil
	}

	if key, value, ok := splitComparison(clause, "!="); ok {
		return vars[key] != value, nil
	}
	if key, value, ok := splitComparison(clause, "=="); ok {
		return vars[key] == value, nil
	}

	return false, fmt.Errorf("invalid condition clause: %q", clause)
}

// splitComparison parses `key <op> 'value'` (single or double quotes)
func splitComparison(clause, op string) (key, value string, ok bool) {
	idx := strings.Index(clause, op)
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(clause[:idx])
	raw := strings.TrimSpace(clause[idx+len(op):])
	if key == "" || len(raw) < 2 {
		return "", "", false
	}
	if (raw[0] == '\'' && raw[len(raw)-1] == '\'') || (raw[0] == '"' && raw[len(raw)-1] == '"') {
		return key, raw[1 : len(raw)-1], true
	}
	return "", "", false
}
