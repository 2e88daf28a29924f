package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed assessment.yaml
var defaultCatalog []byte

// AssessmentOption describes one assessment depth offered to the client.
type AssessmentOption struct {
	Type        string   `yaml:"type" json:"type"`
	Title       string   `yaml:"title" json:"title"`
	Duration    string   `yaml:"duration" json:"duration"`
	Features    []string `yaml:"features" json:"features"`
	Description string   `yaml:"description" json:"description"`
}

type Catalog struct {
	Options []AssessmentOption `yaml:"options" json:"options"`
}

// LoadCatalog reads the catalog from path, or the embedded default when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if err := validateCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &catalog, nil
}

func validateCatalog(c *Catalog) error {
	if len(c.Options) == 0 {
		return fmt.Errorf("at least one option is required")
	}

	seen := make(map[string]bool)
	for i, o := range c.Options {
		if o.Type == "" {
			return fmt.Errorf("option %d must have a type", i)
		}
		if seen[o.Type] {
			return fmt.Errorf("duplicate option type %q", o.Type)
		}
		seen[o.Type] = true
		if o.Title == "" {
			return fmt.Errorf("option %q must have a title", o.Type)
		}
	}

	for _, required := range []string{"basic", "advanced"} {
		if !seen[required] {
			return fmt.Errorf("option %q is missing", required)
		}
	}
	return nil
}
