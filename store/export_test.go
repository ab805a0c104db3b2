package store

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/taskglass/taskglass/models"
	yaml "gopkg.in/yaml.v3"
)

func exportFixture() []models.Task {
	sub := models.NewTask("1.1", "Subtask")
	parent := models.NewTask("1", "Parent")
	parent.Status = models.StatusInProgress
	parent.Dependencies = []string{"2"}
	parent.Subtasks = []models.Task{sub}
	return []models.Task{parent, models.NewTask("2", "Other")}
}

func TestExportJSON(t *testing.T) {
	data, err := Export("master", exportFixture(), "json")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	var out ExportList
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if out.Tag != "master" || len(out.Tasks) != 2 {
		t.Errorf("export = %+v, want master tag with 2 tasks", out)
	}
	if len(out.Tasks[0].Subtasks) != 1 {
		t.Error("subtasks missing from JSON export")
	}
}

func TestExportYAMLRoundTrip(t *testing.T) {
	data, err := Export("feature", exportFixture(), "yaml")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	var out struct {
		Tag   string `yaml:"tag"`
		Tasks []struct {
			ID     string `yaml:"id"`
			Status string `yaml:"status"`
		} `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("export is not valid YAML: %v", err)
	}
	if out.Tag != "feature" || len(out.Tasks) != 2 {
		t.Fatalf("yaml export = %+v", out)
	}
	if out.Tasks[0].Status != "in-progress" {
		t.Errorf("status = %q, want in-progress", out.Tasks[0].Status)
	}
}

func TestExportTOML(t *testing.T) {
	data, err := Export("master", exportFixture(), "toml")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `tag = "master"`) {
		t.Errorf("toml export missing tag line:\n%s", text)
	}
	if !strings.Contains(text, "[[tasks]]") {
		t.Errorf("toml export missing task tables:\n%s", text)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	if _, err := Export("master", nil, "xml"); err == nil {
		t.Error("Export() should reject unknown formats")
	}
}
