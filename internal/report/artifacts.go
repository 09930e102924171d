package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"purebreed/internal/model"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatText, FormatJSON, FormatYAML:
		return Format(name), nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// Encode writes value as indented JSON or YAML.
func Encode(w io.Writer, format Format, value any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q is not a structured encoding", format)
	}
}

// RunConfig records the inputs of one recommendation run.
type RunConfig struct {
	RunID               string  `json:"runId"`
	CreatedAtUTC        string  `json:"createdAtUtc"`
	PopulationPath      string  `json:"populationPath,omitempty"`
	PopulationSize      int     `json:"populationSize"`
	TargetValue         int     `json:"targetValue"`
	Cap                 int     `json:"cap"`
	Workers             int     `json:"workers"`
	Distribution        string  `json:"distribution"`
	WeightAverage       float64 `json:"weightAverage"`
	WeightMax           float64 `json:"weightMax"`
	WeightHighPurity    float64 `json:"weightHighPurity"`
	WeightPerfect       float64 `json:"weightPerfect"`
	HighPurityThreshold float64 `json:"highPurityThreshold"`
}

type Artifacts struct {
	Config RunConfig
	Result model.Result
}

// WriteArtifacts stores config.json and result.json under baseDir/<run id>
// and returns that directory.
func WriteArtifacts(baseDir string, artifacts Artifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "result.json"), artifacts.Result); err != nil {
		return "", err
	}
	return runDir, nil
}

// ReadResult loads result.json for runID from baseDir.
func ReadResult(baseDir, runID string) (model.Result, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, "result.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Result{}, false, nil
		}
		return model.Result{}, false, err
	}
	var result model.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return model.Result{}, false, fmt.Errorf("decode result: %w", err)
	}
	return result, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
