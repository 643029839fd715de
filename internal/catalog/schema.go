package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	ManifestKind           = "catalog"
	SupportedSchemaVersion = 1
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type Manifest struct {
	Kind          string        `yaml:"kind"`
	SchemaVersion int           `yaml:"schema_version"`
	Title         string        `yaml:"title"`
	Intro         string        `yaml:"intro"`
	Dataset       DatasetSpec   `yaml:"dataset"`
	Exercises     []ExerciseRef `yaml:"exercises"`
}

type DatasetSpec struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table"`
}

type ExerciseRef struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Prompt    string   `yaml:"prompt"`
	Result    string   `yaml:"result"`
	Mandatory []string `yaml:"mandatory"`
	Hint      string   `yaml:"hint"`
}

func (m Manifest) Validate() error {
	if m.Kind != ManifestKind {
		return fmt.Errorf("kind must be %q", ManifestKind)
	}
	if m.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if m.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported catalog schema_version %d (max supported %d)", m.SchemaVersion, SupportedSchemaVersion)
	}
	if m.Title == "" {
		return fmt.Errorf("title is required")
	}
	if m.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	if m.Dataset.Table == "" {
		return fmt.Errorf("dataset.table is required")
	}
	if len(m.Exercises) == 0 {
		return fmt.Errorf("exercises must contain at least one item")
	}
	seen := map[string]struct{}{}
	for _, ex := range m.Exercises {
		if err := ex.Validate(); err != nil {
			return err
		}
		if _, ok := seen[ex.ID]; ok {
			return fmt.Errorf("duplicate exercise id %q", ex.ID)
		}
		seen[ex.ID] = struct{}{}
	}
	return nil
}

func (e ExerciseRef) Validate() error {
	if !idPattern.MatchString(e.ID) {
		return fmt.Errorf("invalid exercise id %q", e.ID)
	}
	if e.Prompt == "" {
		return fmt.Errorf("exercise %q: prompt is required", e.ID)
	}
	if e.Result == "" {
		return fmt.Errorf("exercise %q: result is required", e.ID)
	}
	for _, clause := range e.Mandatory {
		if strings.TrimSpace(clause) == "" {
			return fmt.Errorf("exercise %q: mandatory clauses must not be blank", e.ID)
		}
		// Submissions are upper-cased before matching, so a lower-case
		// token could never be satisfied.
		if clause != strings.ToUpper(clause) {
			return fmt.Errorf("exercise %q: mandatory clause %q must be upper-case", e.ID, clause)
		}
	}
	return nil
}
