// Package storage keeps uploaded objects. The only backend is the local
// disk; files are served back by the HTTP server under /files/.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or try to leave the
// storage root.
var ErrInvalidKey = errors.New("storage: invalid object key")

// ObjectStore stores objects under slash-separated keys.
type ObjectStore interface {
	// Put writes r under key and returns the public URL of the object.
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// LocalStore writes objects below a root directory.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates root if needed. baseURL is the public prefix the
// files are served from, e.g. "http://localhost:8080/files".
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating root %q: %w", root, err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root is the directory objects are written to.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("storage: creating directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("storage: creating %q: %w", clean, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("storage: writing %q: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("storage: closing %q: %w", clean, err)
	}

	return s.baseURL + "/" + clean, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: deleting %q: %w", clean, err)
	}
	return nil
}

// cleanKey normalises key to a relative slash path with no ".." segments.
func cleanKey(key string) (string, error) {
	if strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" || clean == "." {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	return clean, nil
}
