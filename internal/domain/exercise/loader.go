package exercise

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Parse decodes one exercise from YAML and validates it.
func Parse(data []byte) (Exercise, error) {
	e, err := decode(data)
	if err != nil {
		return Exercise{}, err
	}
	if err := e.Validate(); err != nil {
		return Exercise{}, err
	}
	return e, nil
}

// decode reads a single YAML document, rejecting unknown fields.
// Empty input yields a zero exercise for Validate to reject.
func decode(data []byte) (Exercise, error) {
	var e Exercise
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&e); err != nil && !errors.Is(err, io.EOF) {
		return Exercise{}, fmt.Errorf("%w: %w", ErrInvalidExercise, err)
	}
	return e, nil
}

// LoadFile reads one exercise definition from path. A missing id defaults
// to the file name without extension.
func LoadFile(path string) (Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Exercise{}, fmt.Errorf("read exercise %s: %w", path, err)
	}
	e, err := decode(data)
	if err != nil {
		return Exercise{}, fmt.Errorf("%s: %w", path, err)
	}
	if e.ID == "" {
		e.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := e.Validate(); err != nil {
		return Exercise{}, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(ctx context.Context, dir string) ([]Exercise, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read exercises dir %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(paths)

	exercises := make([]Exercise, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: id %s defined in %s and %s", ErrInvalidExercise, e.ID, prev, path)
		}
		seen[e.ID] = path
		exercises = append(exercises, e)
	}
	return exercises, nil
}
