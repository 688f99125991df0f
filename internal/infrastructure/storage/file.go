// Package storage persists the recipe collection.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/recipelens/backend/internal/domain"
)

// FileStore keeps the recipe collection as a JSON array in a single file
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// LoadRecipes reads the collection. A missing file is an empty collection.
func (s *FileStore) LoadRecipes(ctx context.Context) ([]domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Recipe{}, nil
		}
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Recipe{}, nil
	}

	var recipes []domain.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	if recipes == nil {
		recipes = []domain.Recipe{}
	}
	return recipes, nil
}

// SaveRecipes writes the collection through a temp file and rename
func (s *FileStore) SaveRecipes(ctx context.Context, recipes []domain.Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if recipes == nil {
		recipes = []domain.Recipe{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recipes); err != nil {
		return fmt.Errorf("failed to encode recipes: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".recipes-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write recipes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write recipes: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
