package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultFilePath = "~/.local/share/tunesphere/store.toml"

// FileStore keeps every key in a single TOML document on disk. The file is
// re-read on each operation so separate processes (the TUI and one-shot CLI
// commands) observe each other's writes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileDocument struct {
	Values map[string]string `toml:"values"`
}

// NewFileStore returns a store backed by path; empty uses the default location.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultFilePath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	return &FileStore{path: resolved}, nil
}

// Path returns the resolved file location.
func (s *FileStore) Path() string {
	return s.path
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", false, err
	}
	value, ok := doc.Values[key]
	return value, ok, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Values[key] = value
	return s.write(doc)
}

// Remove implements Store. Removing a missing key is not an error.
func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Values[key]; !ok {
		return nil
	}
	delete(doc.Values, key)
	return s.write(doc)
}

func (s *FileStore) read() (fileDocument, error) {
	doc := fileDocument{Values: map[string]string{}}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read store: %w", err)
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse store: %w", err)
	}
	if doc.Values == nil {
		doc.Values = map[string]string{}
	}
	return doc, nil
}

func (s *FileStore) write(doc fileDocument) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.toml")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
