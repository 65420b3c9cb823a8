package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalCondition(t *testing.T) {
	vars := map[string]string{
		"event":           "pull_request",
		"matrix.coverage": "true",
		"matrix.python":   "3.12",
	}

	tests := []struct {
		name   string
		expr   string
		failed bool
		want   bool
	}{
		{"empty is success", "", false, true},
		{"empty after failure", "", true, false},
		{"always", "always()", true, true},
		{"success after failure", "success()", true, false},
		{"failure after failure", "failure()", true, true},
		{"failure without failure", "failure()", false, false},
		{"equality match", "event == 'pull_request'", false, true},
		{"equality mismatch", "event == 'push'", false, false},
		{"double quotes", `matrix.python == "3.12"`, false, true},
		{"inequality", "event != 'push'", false, true},
		{"unknown key compares empty", "matrix.os == ''", false, true},
		{"conjunction", "matrix.coverage == 'true' && event == 'pull_request'", false, true},
		{"conjunction short-circuits", "matrix.coverage == 'false' && event == 'pull_request'", false, false},
		{"mixed function and comparison", "success() && event == 'pull_request'", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalCondition(tt.expr, tt.failed, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalCondition_Invalid(t *testing.T) {
	for _, expr := range []string{
		"nonsense",
		"event == unquoted",
		"event ==",
	} {
		_, err := EvalCondition(expr, false, nil)
		assert.Error(t, err, "expr %q", expr)
	}
}
