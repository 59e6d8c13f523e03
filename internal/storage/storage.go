package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nao1215/techtally/internal/model"
)

var (
	// ErrInputNotFound is returned when a stage input file does not exist.
	ErrInputNotFound = errors.New("input file not found")

	// ErrMalformedInput is returned when a stage input file is not the expected JSON shape.
	ErrMalformedInput = errors.New("malformed input")
)

// ReadURLList reads a JSON array of URL strings.
func ReadURLList(path string) ([]string, error) {
	var urls []string
	if err := readJSON(path, &urls); err != nil {
		return nil, err
	}
	return urls, nil
}

// ReadFiltered reads a URL to category text object, preserving key order.
func ReadFiltered(path string) (*model.Filtered, error) {
	m := model.NewOrderedMap[string]()
	if err := readJSON(path, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadBuckets reads a keyword to URL list object, preserving key order.
func ReadBuckets(path string) (*model.Buckets, error) {
	m := model.NewOrderedMap[[]string]()
	if err := readJSON(path, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadCounts reads a keyword to count object, preserving key order.
func ReadCounts(path string) (*model.Counts, error) {
	m := model.NewOrderedMap[int]()
	if err := readJSON(path, m); err != nil {
		return nil, err
	}
	return m, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // Stage file paths come from the user's configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrInputNotFound)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w: %w", path, ErrMalformedInput, err)
	}
	return nil
}

// WriteJSON encodes v with four-space indentation, without HTML escaping,
// and atomically replaces path with the result.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // Stage files are meant to be shared
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
