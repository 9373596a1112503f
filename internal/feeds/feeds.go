// Package feeds holds the registry of RSS sources the pipeline reads.
package feeds

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is a named RSS feed.
type Source struct {
	Name    string `yaml:"name"`
	FeedURL string `yaml:"url"`
}

// SourcesConfig is the YAML layout of an override file:
//
//	sources:
//	  - name: RSS Feed World
//	    url: https://...
type SourcesConfig struct {
	Sources []Source `yaml:"sources"`
}

// Default returns the built-in Fox News feed list in a fixed order.
func Default() []Source {
	return []Source{
		{Name: "RSS Feed World", FeedURL: "https://moxie.foxnews.com/google-publisher/world.xml"},
		{Name: "RSS Feed Politics", FeedURL: "https://moxie.foxnews.com/google-publisher/politics.xml"},
		{Name: "RSS Feed Science", FeedURL: "https://moxie.foxnews.com/google-publisher/science.xml"},
		{Name: "RSS Feed Tech", FeedURL: "https://moxie.foxnews.com/google-publisher/tech.xml"},
	}
}

// Load reads a source list from a YAML file. An empty path yields Default.
func Load(path string) ([]Source, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer f.Close()

	var cfg SourcesConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode sources file %s: %w", path, err)
	}

	if err := Validate(cfg.Sources); err != nil {
		return nil, fmt.Errorf("sources file %s: %w", path, err)
	}
	return cfg.Sources, nil
}

// Validate checks that the list is non-empty and that names are unique,
// since the fetcher keys its result by name.
func Validate(sources []Source) error {
	if len(sources) == 0 {
		return fmt.Errorf("no sources configured")
	}

	seen := make(map[string]struct{}, len(sources))
	for i, s := range sources {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("source %d: empty name", i)
		}
		if strings.TrimSpace(s.FeedURL) == "" {
			return fmt.Errorf("source %q: empty url", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// Names returns the source names in registry order.
func Names(sources []Source) []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	return names
}
