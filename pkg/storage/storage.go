package storage

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cyclopcam/detprep/pkg/config"
	"github.com/cyclopcam/logs"
)

var ErrNoPublicUrl = errors.New("No public URL")

// Storage is an abstraction of a blob store (a local directory, or a GCS bucket).
// Names are slash separated and relative to the root of the store.
type Storage interface {
	// When finished, you must close the WriteCloser.
	// Nothing is visible under 'name' until Close succeeds.
	WriteFile(name string) (io.WriteCloser, error)

	// When finished, you must close File.Reader
	ReadFile(name string) (*File, error)

	Exists(name string) (bool, error)

	// Location is a human readable full path or URL of name, for logs and errors
	Location(name string) string

	// URL returns a public URL for the file, or ErrNoPublicUrl
	URL(name string) (string, error)
}

// File is an element in blob storage.
type File struct {
	Reader     io.ReadCloser
	ModifiedAt time.Time
	Size       int64
}

// Writers that can discard a partial upload implement aborter
type aborter interface {
	Abort() error
}

// WriteFile writes content to name. If the copy fails, the partial write is discarded.
func WriteFile(s Storage, name string, content io.Reader) error {
	f, err := s.WriteFile(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, content)
	if err != nil {
		if a, ok := f.(aborter); ok {
			a.Abort()
		} else {
			f.Close()
		}
		return fmt.Errorf("Failed to write %v: %w", s.Location(name), err)
	}
	return f.Close()
}

// ReadFile returns the whole content of name
func ReadFile(s Storage, name string) ([]byte, error) {
	f, err := s.ReadFile(name)
	if err != nil {
		return nil, err
	}
	defer f.Reader.Close()
	return io.ReadAll(f.Reader)
}

// Open creates the store described by cfg
func Open(log logs.Log, cfg config.StorageConfig) (Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.GCS != nil {
		return NewStorageGCS(log, cfg.GCS.Bucket, cfg.GCS.Prefix, cfg.GCS.Public)
	}
	return NewStorageFS(log, cfg.Filesystem.Root)
}

// OpenLocation creates the store for a command line location (a directory, or gs://bucket/prefix)
func OpenLocation(log logs.Log, location string) (Storage, error) {
	cfg, err := config.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	return Open(log, cfg)
}

// ReadLocation reads a single file given on the command line, as a local path or gs://bucket/object
func ReadLocation(log logs.Log, location string) ([]byte, error) {
	var dir, name string
	if strings.HasPrefix(location, "gs://") {
		dir, name = path.Split(location)
	} else {
		dir, name = filepath.Split(location)
	}
	if name == "" {
		return nil, fmt.Errorf("'%v' is not a file", location)
	}
	if dir == "" {
		dir = "."
	}
	s, err := OpenLocation(log, dir)
	if err != nil {
		return nil, err
	}
	b, err := ReadFile(s, name)
	if err != nil {
		return nil, fmt.Errorf("Failed to read %v: %w", s.Location(name), err)
	}
	return b, nil
}
