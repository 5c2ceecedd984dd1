package ingest

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for all data sources.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// FetchConfig defines HTTP fetching configuration for a source.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"`
	MaxRetries     int     `yaml:"max_retries,omitempty"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`
}

// SelectorConfig drives the generic HTML listing parser.
type SelectorConfig struct {
	Container string `yaml:"container"`
	Link      string `yaml:"link,omitempty"`
	Title     string `yaml:"title,omitempty"`
	Content   string `yaml:"content,omitempty"`
	Amount    string `yaml:"amount,omitempty"`
	Deadline  string `yaml:"deadline,omitempty"`
}

// SourceConfig defines a single data source for ingestion.
type SourceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Country  string `yaml:"country"`
	Sector   string `yaml:"sector,omitempty"`
	Currency string `yaml:"currency,omitempty"`
	BaseURL  string `yaml:"base_url"`
	Active   bool   `yaml:"active"`

	Fetch     FetchConfig    `yaml:"fetch,omitempty"`
	Selectors SelectorConfig `yaml:"selectors,omitempty"`
}

// LoadRegistry reads the embedded sources.yaml, falling back to the
// filesystem path for local development overrides.
func LoadRegistry(path string) (*Registry, error) {
	data, err := sourcesYAML.ReadFile("config/sources.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, fmt.Errorf("failed to parse source registry: %w", err)
	}

	return &reg, nil
}

// Find returns the source with the given ID.
func (r *Registry) Find(id string) (SourceConfig, bool) {
	for _, s := range r.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// ActiveSources returns only the sources marked active.
func (r *Registry) ActiveSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(r.Sources))
	for _, s := range r.Sources {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}
