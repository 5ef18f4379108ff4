package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader reads feed seed files from a directory. Seeds are additive: feeds
// already present in the store are left untouched.
type Loader struct {
	feedsDir string
}

func NewLoader(feedsDir string) *Loader {
	return &Loader{feedsDir: feedsDir}
}

// LoadAll loads every YAML seed file from the feeds directory. A missing
// directory is not an error; the service can run on feeds registered via
// the API alone.
func (l *Loader) LoadAll() ([]FeedSeed, error) {
	if _, err := os.Stat(l.feedsDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	var seeds []FeedSeed
	for _, file := range files {
		fileSeeds, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		seeds = append(seeds, fileSeeds...)
		slog.Info("Loaded feed seeds", "file", file, "feeds", len(fileSeeds))
	}

	return seeds, nil
}

func (l *Loader) loadFile(path string) ([]FeedSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var seedFile SeedFile
	if err := yaml.Unmarshal(data, &seedFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range seedFile.Feeds {
		if err := validate(&seedFile.Feeds[i]); err != nil {
			return nil, fmt.Errorf("invalid seed at index %d: %w", i, err)
		}
	}

	return seedFile.Feeds, nil
}

func validate(seed *FeedSeed) error {
	if seed.URL == "" {
		return fmt.Errorf("feed URL is required")
	}
	if seed.Name == "" {
		return fmt.Errorf("feed name is required")
	}
	if seed.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must be non-negative")
	}
	return nil
}

// GetRefreshInterval returns the refresh interval as time.Duration.
func (s *FeedSeed) GetRefreshInterval() time.Duration {
	if s.RefreshInterval <= 0 {
		return time.Hour
	}
	return time.Duration(s.RefreshInterval) * time.Second
}
