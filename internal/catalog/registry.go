package catalog

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Manifest is the embedded model-preference configuration for a provider.
type Manifest struct {
	Provider          string   `yaml:"provider"`
	Preferred         []string `yaml:"preferred"`
	ExcludeSubstrings []string `yaml:"exclude_substrings"`
}

// Registry holds preference manifests keyed by provider name.
type Registry struct {
	manifests map[string]*Manifest
}

// NewRegistry loads the embedded YAML manifests.
func NewRegistry() (*Registry, error) {
	r := &Registry{manifests: make(map[string]*Manifest)}

	entries, err := configFiles.ReadDir("config")
	if err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}

	for _, entry := range entries {
		data, err := configFiles.ReadFile("config/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", entry.Name(), err)
		}
		if m.Provider == "" {
			return nil, fmt.Errorf("manifest %s has no provider", entry.Name())
		}
		r.manifests[m.Provider] = &m
	}

	return r, nil
}

// Manifest returns the manifest for a provider.
func (r *Registry) Manifest(provider string) (*Manifest, error) {
	m, ok := r.manifests[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	return m, nil
}

// Excluded reports whether a model identifier marks a generation-incapable
// model (embedding-only and similar).
func (m *Manifest) Excluded(modelID string) bool {
	id := strings.ToLower(modelID)
	for _, sub := range m.ExcludeSubstrings {
		if strings.Contains(id, sub) {
			return true
		}
	}
	return false
}

// Order arranges eligible model IDs for the fallback loop: preferred models
// first in manifest order (skipping ones the listing did not return), then
// the remaining models in listing order, minus excluded ones.
func (m *Manifest) Order(listed []string) []string {
	available := make(map[string]bool, len(listed))
	for _, id := range listed {
		available[id] = true
	}

	ordered := make([]string, 0, len(listed))
	taken := make(map[string]bool, len(m.Preferred))

	for _, id := range m.Preferred {
		if available[id] {
			ordered = append(ordered, id)
			taken[id] = true
		}
	}

	for _, id := range listed {
		if taken[id] || m.Excluded(id) {
			continue
		}
		ordered = append(ordered, id)
	}

	return ordered
}
