package hooks

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the parsed hook configuration of a session.
type Document struct {
	Hooks         []Entry        `yaml:"hooks" json:"hooks"`
	Configuration map[string]any `yaml:"configuration" json:"configuration"`
}

// Entry configures a single hook.
type Entry struct {
	Name          string         `yaml:"name" json:"name"`
	Configuration map[string]any `yaml:"configuration" json:"configuration"`
}

// LoadDocument reads a YAML or JSON hook document from disk.
func LoadDocument(path string) (Document, error) {
	if path == "" {
		return Document{}, errors.New("hook document path cannot be empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read hook document: %w", err)
	}
	return ParseDocument(raw)
}

// ParseDocument decodes a YAML or JSON hook document.
func ParseDocument(raw []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("unmarshal hook document: %w", err)
	}
	return doc, nil
}

// Effective returns the configuration of entry overridden by the top-level keys of
// the document. Only top-level keys take part; nested maps are replaced, not merged.
func (d Document) Effective(entry Entry) map[string]any {
	cfg := cloneConfig(entry.Configuration)
	for k, v := range d.Configuration {
		cfg[k] = v
	}
	return cfg
}

// DecodeConfiguration binds a configuration map to a tagged struct using its yaml tags.
func DecodeConfiguration(cfg map[string]any, out any) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal hook configuration: %w", err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode hook configuration: %w", err)
	}
	return nil
}
