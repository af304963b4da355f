package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnrichmentConfig configures the summary-generation client. An empty
// endpoint disables enrichment entirely and mapping runs structural-only.
type EnrichmentConfig struct {
	Endpoint       string `yaml:"endpoint,omitempty"`
	APIKey         string `yaml:"apiKey,omitempty"`
	Model          string `yaml:"model,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
	Retries        int    `yaml:"retries,omitempty"`
}

// ProjectConfig holds project-level settings loaded from codeatlas.yml.
type ProjectConfig struct {
	Languages   []string         `yaml:"languages,omitempty"`
	ExcludeDirs []string         `yaml:"excludeDirs,omitempty"`
	Database    string           `yaml:"database,omitempty"`
	Concurrency int              `yaml:"concurrency,omitempty"`
	Enrichment  EnrichmentConfig `yaml:"enrichment,omitempty"`
	LogLevel    string           `yaml:"logLevel,omitempty"`
}

// Load attempts to read codeatlas.yml or codeatlas.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"codeatlas.yml", "codeatlas.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
