package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the optional JSON file that the conversion tools accept with --config.
// Command line flags override anything set here.
type Config struct {
	Exclude         []string      `json:"exclude"`         // Annotation file names (eg "n02419796_3142.xml") to skip
	UnknownCategory string        `json:"unknownCategory"` // What to do with source classes outside the vocabulary (drop, warn, error)
	Vocab           string        `json:"vocab"`           // Path to a vocabulary JSON file, replacing the built-in tables
	Output          StorageConfig `json:"output"`          // Where converted documents are written
}

// One of the storage options must be configured (i.e. either 'filesystem' or 'gcs')
type StorageConfig struct {
	Filesystem *StorageConfigFS  `json:"filesystem"`
	GCS        *StorageConfigGCS `json:"gcs"`
}

type StorageConfigFS struct {
	Root string `json:"root"` // Path to the root of the filesystem
}

type StorageConfigGCS struct {
	Bucket string `json:"bucket"` // Name of the GCS bucket
	Prefix string `json:"prefix"` // Object name prefix, without a trailing slash
	Public bool   `json:"public"` // Whether the bucket is public, so that we can hand out direct URLs
}

const maxConfigSize = 1024 * 1024

// Load reads a config file. Unknown fields are rejected, so that a typo doesn't
// silently fall back to a default.
func Load(filename string) (*Config, error) {
	clean := filepath.Clean(filename)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, fmt.Errorf("Config file must have .json extension, got '%v'", ext)
	}
	st, err := os.Stat(clean)
	if err != nil {
		return nil, err
	}
	if st.Size() > maxConfigSize {
		return nil, fmt.Errorf("Config file %v is too large (%v bytes)", clean, st.Size())
	}
	raw, err := os.ReadFile(clean)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("Failed to parse config file %v: %w", clean, err)
	}
	if !cfg.Output.IsEmpty() {
		if err := cfg.Output.Validate(); err != nil {
			return nil, fmt.Errorf("Invalid output in %v: %w", clean, err)
		}
	}
	return cfg, nil
}

func (s *StorageConfig) IsEmpty() bool {
	return s.Filesystem == nil && s.GCS == nil
}

func (s *StorageConfig) Validate() error {
	if s.Filesystem != nil && s.GCS != nil {
		return fmt.Errorf("Only one of 'filesystem' or 'gcs' may be configured")
	}
	if s.Filesystem != nil && s.Filesystem.Root == "" {
		return fmt.Errorf("filesystem.root is empty")
	}
	if s.GCS != nil && s.GCS.Bucket == "" {
		return fmt.Errorf("gcs.bucket is empty")
	}
	if s.IsEmpty() {
		return fmt.Errorf("No storage configured")
	}
	return nil
}

// ParseLocation turns a command line location into a StorageConfig.
// "gs://bucket/some/prefix" selects GCS, anything else is a filesystem path.
func ParseLocation(location string) (StorageConfig, error) {
	if rest, ok := strings.CutPrefix(location, "gs://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return StorageConfig{}, fmt.Errorf("Invalid GCS location '%v'", location)
		}
		return StorageConfig{GCS: &StorageConfigGCS{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}}, nil
	}
	if location == "" {
		return StorageConfig{}, fmt.Errorf("Empty storage location")
	}
	return StorageConfig{Filesystem: &StorageConfigFS{Root: location}}, nil
}
