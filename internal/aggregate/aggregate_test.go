package aggregate

import (
	"testing"

	"github.com/sourceplane/gateci/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]model.Conclusion
		want    model.Conclusion
	}{
		{
			name: "any failure fails the run",
			results: map[string]model.Conclusion{
				"lint":      model.ConclusionSuccess,
				"lockfiles": model.ConclusionSkipped,
				"test":      model.ConclusionFailure,
			},
			want: model.ConclusionFailure,
		},
		{
			name: "skips do not count as failures",
			results: map[string]model.Conclusion{
				"lint":      model.ConclusionSuccess,
				"lockfiles": model.ConclusionSkipped,
				"test":      model.ConclusionSuccess,
			},
			want: model.ConclusionSuccess,
		},
		{
			name: "all skipped is still success",
			results: map[string]model.Conclusion{
				"lint":      model.ConclusionSkipped,
				"lockfiles": model.ConclusionSkipped,
				"test":      model.ConclusionSkipped,
			},
			want: model.ConclusionSuccess,
		},
		{
			name: "cancelled is excluded from the failure computation",
			results: map[string]model.Conclusion{
				"lint": model.ConclusionSuccess,
				"test": model.ConclusionCancelled,
			},
			want: model.ConclusionSuccess,
		},
		{
			name:    "empty set is success",
			results: map[string]model.Conclusion{},
			want:    model.ConclusionSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.results))
		})
	}
}
