package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the schema of the optional --config file.
type FileConfig struct {
	LogLevel string `yaml:"logLevel" json:"logLevel"`
	LogDir   string `yaml:"logDir" json:"logDir"`
	DataDir  string `yaml:"dataDir" json:"dataDir"`
	Top      *int   `yaml:"top" json:"top"`

	Parse struct {
		HTMLFallback *bool `yaml:"htmlFallback" json:"htmlFallback"`
		MaxDepth     int   `yaml:"maxDepth" json:"maxDepth"`
	} `yaml:"parse" json:"parse"`

	Filter struct {
		IncludeHeader []string `yaml:"includeHeader" json:"includeHeader"`
		IncludeBody   []string `yaml:"includeBody" json:"includeBody"`
		ExcludeHeader []string `yaml:"excludeHeader" json:"excludeHeader"`
		ExcludeBody   []string `yaml:"excludeBody" json:"excludeBody"`
	} `yaml:"filter" json:"filter"`
}

// LoadConfigFile reads YAML or JSON into FileConfig. Files without a known
// extension are parsed as YAML.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	if filepath.Ext(path) == ".json" {
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
		return fc, nil
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse yaml: %w", err)
	}
	return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. Explicit flags are
// re-applied afterwards by LoadConfig.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}

	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogDir != "" {
		cfg.LogDir = fc.LogDir
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if fc.Top != nil {
		cfg.TopN = *fc.Top
	}
	if fc.Parse.HTMLFallback != nil {
		cfg.HTMLFallback = *fc.Parse.HTMLFallback
	}
	if fc.Parse.MaxDepth > 0 {
		cfg.MaxDepth = fc.Parse.MaxDepth
	}
	if len(fc.Filter.IncludeHeader) > 0 {
		cfg.IncludeHeader = append([]string{}, fc.Filter.IncludeHeader...)
	}
	if len(fc.Filter.IncludeBody) > 0 {
		cfg.IncludeBody = append([]string{}, fc.Filter.IncludeBody...)
	}
	if len(fc.Filter.ExcludeHeader) > 0 {
		cfg.ExcludeHeader = append([]string{}, fc.Filter.ExcludeHeader...)
	}
	if len(fc.Filter.ExcludeBody) > 0 {
		cfg.ExcludeBody = append([]string{}, fc.Filter.ExcludeBody...)
	}
}
