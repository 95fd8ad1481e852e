// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Manifest records what a scrape run asked for and what it produced. It is
// written next to the CSV as <name>.manifest.yaml.
type Manifest struct {
	RunID     string    `yaml:"run_id"`
	Term      string    `yaml:"term"`
	Output    string    `yaml:"output"`
	Started   time.Time `yaml:"started"`
	Finished  time.Time `yaml:"finished"`
	IDs       int       `yaml:"ids"`
	ChunkSize int       `yaml:"chunk_size"`
	Chunks    int       `yaml:"chunks"`
	Articles  int       `yaml:"articles"`
	Malformed int       `yaml:"malformed"`

	FailedChunks []ChunkFailure `yaml:"failed_chunks,omitempty"`
}

// ManifestPath returns the manifest location for a CSV output path.
func ManifestPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".manifest.yaml"
}

// WriteManifest writes m to path.
func WriteManifest(m Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}
