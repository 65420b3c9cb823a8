package main

import (
	"fmt"
	"path/filepath"

	"github.com/sourceplane/gateci/internal/artifact"
	"github.com/sourceplane/gateci/internal/cache"
	"github.com/sourceplane/gateci/internal/filter"
	"github.com/sourceplane/gateci/internal/gate"
	"github.com/sourceplane/gateci/internal/gitdiff"
	"github.com/sourceplane/gateci/internal/loader"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/normalize"
	"github.com/sourceplane/gateci/internal/runstore"
)

// loadPipelineFile loads and normalizes the pipeline definition
func loadPipelineFile(trunkOverride string) (*model.Pipeline, error) {
	pipeline, err := loader.LoadPipeline(pipelineFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}
	if trunkOverride != "" {
		pipeline.TrunkBranch = trunkOverride
	}
	if err := normalize.NormalizePipeline(pipeline); err != nil {
		return nil, fmt.Errorf("invalid pipeline: %w", err)
	}
	return pipeline, nil
}

// buildEvent assembles the trigger event from CLI flags
func buildEvent(eventName, ref, base string, prNumber int) (model.TriggerEvent, error) {
	kind, err := model.ParseEventKind(eventName)
	if err != nil {
		return model.TriggerEvent{}, err
	}
	return model.TriggerEvent{
		Kind:     kind,
		Ref:      ref,
		BaseRef:  base,
		PRNumber: prNumber,
	}, nil
}

// evaluateGates runs change detection and the gate evaluator for one event
func evaluateGates(pipeline *model.Pipeline, event model.TriggerEvent) (map[string]gate.Decision, error) {
	base := event.BaseRef
	if base == "" {
		base = pipeline.TrunkBranch
	}

	detector := gitdiff.NewDetector(base, workDir)
	changed, comparable, err := detector.Changed()
	if err != nil {
		return nil, fmt.Errorf("change detection failed: %w", err)
	}

	results, err := filter.Evaluate(pipeline.Filters, changed, comparable)
	if err != nil {
		return nil, err
	}

	ctx := gate.NewContext(event, pipeline.TrunkBranch, results)
	return gate.Evaluate(pipeline, ctx), nil
}

// openStores opens the cache, artifact, and run stores under the state dir
func openStores() (*cache.Store, *artifact.Store, *runstore.Store, error) {
	cacheStore, err := cache.NewStore(filepath.Join(stateDir, "cache"))
	if err != nil {
		return nil, nil, nil, err
	}
	artifacts, err := artifact.NewStore(filepath.Join(stateDir, "artifacts"))
	if err != nil {
		return nil, nil, nil, err
	}
	runs, err := runstore.NewStore(stateDir)
	if err != nil {
		return nil, nil, nil, err
	}
	return cacheStore, artifacts, runs, nil
}
