package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	api "purebreed/pkg/purebreed"
)

// recommendOptions is a recommend request plus the CLI-only output settings.
type recommendOptions struct {
	Request     api.RecommendRequest
	HasTarget   bool
	Format      string
	OutDir      string
	MetricsFile string
	LogLevel    string
}

// loadRecommendOptionsFromConfig reads a YAML (or JSON) recommend config.
// Missing keys keep the CLI defaults.
func loadRecommendOptionsFromConfig(path string) (recommendOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return recommendOptions{}, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return recommendOptions{}, err
	}

	opts := defaultRecommendOptions()
	if v, ok := asString(raw["population"]); ok {
		opts.Request.PopulationPath = v
	}
	if v, ok := asInt(raw["target"]); ok {
		opts.Request.Target = v
		opts.HasTarget = true
	}
	if v, ok := asInt(raw["cap"]); ok {
		opts.Request.Cap = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		opts.Request.Workers = v
	}
	if v, ok := asString(raw["distribution"]); ok {
		opts.Request.Distribution = v
	}
	if v, ok := asFloat64(raw["high_purity_threshold"]); ok {
		opts.Request.HighPurityThreshold = v
	}
	if weights, ok := raw["weights"].(map[string]any); ok {
		w := api.Weights{}
		if v, ok := asFloat64(weights["average"]); ok {
			w.Average = v
		}
		if v, ok := asFloat64(weights["max"]); ok {
			w.Max = v
		}
		if v, ok := asFloat64(weights["high_purity"]); ok {
			w.HighPurity = v
		}
		if v, ok := asFloat64(weights["perfect"]); ok {
			w.Perfect = v
		}
		opts.Request.Weights = w
	}
	if v, ok := asString(raw["format"]); ok {
		opts.Format = v
	}
	if v, ok := asString(raw["out"]); ok {
		opts.OutDir = v
	}
	if v, ok := asString(raw["metrics_file"]); ok {
		opts.MetricsFile = v
	}
	if v, ok := asString(raw["log_level"]); ok {
		opts.LogLevel = v
	}
	return opts, nil
}

func defaultRecommendOptions() recommendOptions {
	return recommendOptions{
		Request: api.RecommendRequest{
			Cap:                 3,
			Workers:             1,
			Distribution:        "branch",
			HighPurityThreshold: 2.0 / 3.0,
		},
		LogLevel: "warn",
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func overrideFromFlags(opts *recommendOptions, set map[string]bool, flagValue map[string]any) error {
	if opts.Request.Weights == (api.Weights{}) && hasAnyWeightOverrideFlag(set) {
		opts.Request.Weights = api.DefaultWeights()
	}
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "population":
			opts.Request.PopulationPath = v.(string)
		case "target":
			opts.Request.Target = v.(int)
			opts.HasTarget = true
		case "cap":
			opts.Request.Cap = v.(int)
		case "workers":
			opts.Request.Workers = v.(int)
		case "distribution":
			opts.Request.Distribution = v.(string)
		case "w-average":
			opts.Request.Weights.Average = v.(float64)
		case "w-max":
			opts.Request.Weights.Max = v.(float64)
		case "w-high":
			opts.Request.Weights.HighPurity = v.(float64)
		case "w-perfect":
			opts.Request.Weights.Perfect = v.(float64)
		case "high-threshold":
			opts.Request.HighPurityThreshold = v.(float64)
		case "format":
			opts.Format = v.(string)
		case "out":
			opts.OutDir = v.(string)
		case "metrics-file":
			opts.MetricsFile = v.(string)
		case "log-level":
			opts.LogLevel = v.(string)
		default:
			return fmt.Errorf("unsupported override flag: %s", name)
		}
	}
	return nil
}

func hasAnyWeightOverrideFlag(set map[string]bool) bool {
	return set["w-average"] || set["w-max"] || set["w-high"] || set["w-perfect"]
}

func loadOrDefaultRecommendOptions(configPath string) (recommendOptions, error) {
	if configPath == "" {
		return defaultRecommendOptions(), nil
	}
	opts, err := loadRecommendOptionsFromConfig(configPath)
	if err != nil {
		return recommendOptions{}, fmt.Errorf("load config: %w", err)
	}
	return opts, nil
}
