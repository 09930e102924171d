package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRecommendOptionsFromYAMLConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommend.yaml")
	body := `
population: herd.csv
target: 12
cap: 2
workers: 4
distribution: distinct
high_purity_threshold: 0.75
weights:
  average: 0.25
  max: 0.25
  high_purity: 0.25
  perfect: 0.25
format: yaml
out: runs
metrics_file: metrics.prom
log_level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts, err := loadRecommendOptionsFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	req := opts.Request
	if req.PopulationPath != "herd.csv" || req.Target != 12 || !opts.HasTarget {
		t.Fatalf("unexpected base fields: %+v", opts)
	}
	if req.Cap != 2 || req.Workers != 4 || req.Distribution != "distinct" || req.HighPurityThreshold != 0.75 {
		t.Fatalf("unexpected recommender fields: %+v", req)
	}
	if req.Weights.Average != 0.25 || req.Weights.Max != 0.25 || req.Weights.HighPurity != 0.25 || req.Weights.Perfect != 0.25 {
		t.Fatalf("unexpected weights: %+v", req.Weights)
	}
	if opts.Format != "yaml" || opts.OutDir != "runs" || opts.MetricsFile != "metrics.prom" || opts.LogLevel != "debug" {
		t.Fatalf("unexpected output fields: %+v", opts)
	}
}

func TestLoadRecommendOptionsFromJSONConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommend.json")
	if err := os.WriteFile(path, []byte(`{"population":"herd.yaml"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	opts, err := loadRecommendOptionsFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if opts.HasTarget {
		t.Fatal("expected target to be unset")
	}
	if opts.Request.Cap != 3 || opts.Request.Workers != 1 || opts.Request.Distribution != "branch" || opts.LogLevel != "warn" {
		t.Fatalf("expected defaults, got %+v", opts)
	}
}

func TestOverrideFromFlags(t *testing.T) {
	opts := defaultRecommendOptions()
	opts.Request.PopulationPath = "a.csv"

	err := overrideFromFlags(&opts, map[string]bool{"target": true, "cap": true, "w-perfect": true, "config": true}, map[string]any{
		"target":    7,
		"cap":       1,
		"w-perfect": 0.2,
		"workers":   9,
	})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if !opts.HasTarget || opts.Request.Target != 7 || opts.Request.Cap != 1 {
		t.Fatalf("unexpected overrides: %+v", opts.Request)
	}
	if opts.Request.Workers != 1 {
		t.Fatalf("unset flag must not override, workers=%d", opts.Request.Workers)
	}
	w := opts.Request.Weights
	if w.Average != 0.4 || w.Max != 0.3 || w.HighPurity != 0.2 || w.Perfect != 0.2 {
		t.Fatalf("expected default weights with perfect overridden, got %+v", w)
	}
	if opts.Request.PopulationPath != "a.csv" {
		t.Fatalf("population path changed: %q", opts.Request.PopulationPath)
	}
}

func TestLoadOrDefaultRecommendOptionsMissingFile(t *testing.T) {
	if _, err := loadOrDefaultRecommendOptions(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config")
	}
}
