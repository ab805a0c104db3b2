package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/taskglass/taskglass/models"
	yaml "gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// ExportList is the envelope written by Export. TOML cannot represent a
// top-level array, so every format shares the same wrapper for consistency.
type ExportList struct {
	Tag   string        `json:"tag" yaml:"tag" toml:"tag"`
	Tasks []models.Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Export renders a canonical task tree in the requested format.
// Supported formats are json, yaml and toml.
func Export(tag string, tasks []models.Task, format string) ([]byte, error) {
	list := ExportList{Tag: tag, Tasks: tasks}
	switch strings.ToLower(format) {
	case formatJSON:
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tasks to JSON: %w", err)
		}
		return append(data, '\n'), nil
	case formatYAML:
		data, err := yaml.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tasks to YAML: %w", err)
		}
		return data, nil
	case formatTOML:
		buf := new(bytes.Buffer)
		if err := toml.NewEncoder(buf).Encode(list); err != nil {
			return nil, fmt.Errorf("failed to marshal tasks to TOML: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported export format: %s (supported formats are json, yaml, toml)", format)
}
