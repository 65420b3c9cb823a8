package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sourceplane/gateci/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadPipeline loads, schema-checks, and parses a pipeline YAML file
func LoadPipeline(path string) (*model.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}
	return ParsePipeline(data)
}

// ParsePipeline schema-checks and parses raw pipeline YAML
func ParsePipeline(data []byte) (*model.Pipeline, error) {
	// Parse to interface{} first so the schema sees the raw document
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline YAML: %w", err)
	}

	schema, err := pipelineSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(normalizeForSchema(doc)); err != nil {
		return nil, fmt.Errorf("pipeline failed schema validation: %w", err)
	}

	var pipeline model.Pipeline
	if err := yaml.Unmarshal(data, &pipeline); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline YAML: %w", err)
	}

	return &pipeline, nil
}

// pipelineSchema compiles the embedded pipeline schema
func pipelineSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.CompileString("pipeline.schema.json", pipelineSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pipeline schema: %w", err)
	}
	return schema, nil
}

// normalizeForSchema converts YAML-decoded values into the JSON-shaped values
// the schema compiler expects (string-keyed maps, no YAML-specific types)
func normalizeForSchema(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
