package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kijinews/kiji/internal/models"
)

// SourceList is the parsed feed source registry.
type SourceList struct {
	Feeds []models.FeedSource

	// MaxItems, when > 0, overrides the config-level manifest bound.
	MaxItems int
}

// sourceEntry accepts either a bare URL string or a {url, name, category}
// object, in both JSON and YAML.
type sourceEntry struct {
	models.FeedSource
}

func (e *sourceEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.URL)
	}
	return json.Unmarshal(data, &e.FeedSource)
}

func (e *sourceEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&e.URL)
	}
	return node.Decode(&e.FeedSource)
}

// sourceFile is the object form of the registry. The bare-list form is
// handled separately in decode.
type sourceFile struct {
	Feeds    []sourceEntry `json:"feeds" yaml:"feeds"`
	MaxItems int           `json:"maxItems" yaml:"maxItems"`
}

// LoadSources reads the feed source registry from path. JSON and YAML are
// supported, selected by file extension, and both the object form
// ({feeds: [...], maxItems: N}) and a bare list of entries are accepted.
// An absent, empty, or structurally invalid registry is a fatal
// configuration error: the run must not start without usable sources.
func LoadSources(path string) (*SourceList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file %q: %w", path, err)
	}

	var sf sourceFile

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("parsing sources file %q: %w", path, err)
		}
		doc := &root
		if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
			doc = doc.Content[0]
		}
		if doc.Kind == yaml.SequenceNode {
			if err := doc.Decode(&sf.Feeds); err != nil {
				return nil, fmt.Errorf("parsing sources file %q: %w", path, err)
			}
		} else if err := doc.Decode(&sf); err != nil {
			return nil, fmt.Errorf("parsing sources file %q: %w", path, err)
		}
	case ".json":
		if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(data, &sf.Feeds); err != nil {
				return nil, fmt.Errorf("parsing sources file %q: %w", path, err)
			}
		} else if err := json.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parsing sources file %q: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("sources file %q: unsupported extension %q (want .json, .yaml or .yml)", path, ext)
	}

	list := &SourceList{MaxItems: sf.MaxItems}
	for _, e := range sf.Feeds {
		if strings.TrimSpace(e.URL) == "" {
			return nil, fmt.Errorf("sources file %q: feed entry with empty url", path)
		}
		list.Feeds = append(list.Feeds, e.FeedSource)
	}

	if len(list.Feeds) == 0 {
		return nil, fmt.Errorf("sources file %q: no feeds configured", path)
	}
	if list.MaxItems < 0 {
		return nil, fmt.Errorf("sources file %q: maxItems must be non-negative", path)
	}

	return list, nil
}
