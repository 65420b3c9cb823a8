package normalize

import (
	"testing"

	"github.com/sourceplane/gateci/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPipeline() *model.Pipeline {
	return &model.Pipeline{
		Metadata: model.Metadata{Name: "ci"},
		Filters: []model.FilterRule{
			{Name: "backend", Patterns: []string{"skore/**"}},
		},
		Jobs: []model.JobSpec{
			{Name: "lint", When: model.WhenClause{Filter: "backend"}, Steps: []model.Step{{Name: "s", Run: "true"}}},
			{Name: "test", Needs: []string{"lint"}, Steps: []model.Step{{Name: "s", Run: "true"}}},
		},
	}
}

func TestNormalizePipeline_Defaults(t *testing.T) {
	pipeline := validPipeline()
	require.NoError(t, NormalizePipeline(pipeline))

	assert.Equal(t, DefaultTrunkBranch, pipeline.TrunkBranch)
	assert.Equal(t, "ci", pipeline.ConcurrencyGroup)
	assert.NotNil(t, pipeline.Jobs[0].Needs)
}

func TestNormalizePipeline_KeepsExplicitValues(t *testing.T) {
	pipeline := validPipeline()
	pipeline.TrunkBranch = "develop"
	pipeline.ConcurrencyGroup = "custom"
	require.NoError(t, NormalizePipeline(pipeline))

	assert.Equal(t, "develop", pipeline.TrunkBranch)
	assert.Equal(t, "custom", pipeline.ConcurrencyGroup)
}

func TestNormalizePipeline_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Pipeline)
	}{
		{"nil pipeline handled separately", nil},
		{"duplicate job name", func(p *model.Pipeline) {
			p.Jobs = append(p.Jobs, model.JobSpec{Name: "lint", Steps: []model.Step{{Name: "s", Run: "x"}}})
		}},
		{"unknown need", func(p *model.Pipeline) {
			p.Jobs[1].Needs = []string{"ghost"}
		}},
		{"self dependency", func(p *model.Pipeline) {
			p.Jobs[0].Needs = []string{"lint"}
		}},
		{"unknown filter", func(p *model.Pipeline) {
			p.Jobs[0].When.Filter = "ghost"
		}},
		{"job without steps", func(p *model.Pipeline) {
			p.Jobs[0].Steps = nil
		}},
		{"step without action", func(p *model.Pipeline) {
			p.Jobs[0].Steps = []model.Step{{Name: "s"}}
		}},
		{"duplicate step name", func(p *model.Pipeline) {
			p.Jobs[0].Steps = []model.Step{{Name: "s", Run: "a"}, {Name: "s", Run: "b"}}
		}},
		{"filter without patterns", func(p *model.Pipeline) {
			p.Filters[0].Patterns = nil
		}},
		{"empty matrix axis", func(p *model.Pipeline) {
			p.Jobs[0].Matrix = &model.MatrixSpec{Axes: map[string][]string{"python": {}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate == nil {
				assert.Error(t, NormalizePipeline(nil))
				return
			}
			pipeline := validPipeline()
			tt.mutate(pipeline)
			assert.Error(t, NormalizePipeline(pipeline))
		})
	}
}
