package population

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"purebreed/internal/model"
)

// ReadYAML reads a YAML list of records.
func ReadYAML(in io.Reader) ([]model.Organism, error) {
	var records []Record
	if err := yaml.NewDecoder(in).Decode(&records); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode population yaml: %w", err)
	}
	return Organisms(records)
}

// ReadJSON reads a JSON array of records.
func ReadJSON(in io.Reader) ([]model.Organism, error) {
	var records []Record
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode population json: %w", err)
	}
	return Organisms(records)
}

// Load reads a population file, choosing the format from its extension.
func Load(path string) ([]model.Organism, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSV(f)
	case ".yaml", ".yml":
		return ReadYAML(f)
	case ".json":
		return ReadJSON(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Save writes organisms to path in the format implied by its extension.
func Save(path string, organisms []model.Organism) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, strings.ToLower(filepath.Ext(path)), organisms); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write encodes organisms as csv, yaml or json. The format may be given with
// or without a leading dot.
func Write(out io.Writer, format string, organisms []model.Organism) error {
	records := make([]Record, 0, len(organisms))
	for _, o := range organisms {
		records = append(records, RecordFromOrganism(o))
	}

	switch strings.TrimPrefix(format, ".") {
	case "csv":
		return WriteCSV(out, organisms)
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
