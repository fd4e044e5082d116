package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs as plain files under a root directory. Locators
// are paths relative to the root, so the database never embeds an absolute
// filesystem path.
type LocalStore struct {
	root       string
	publicBase string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root, publicBase string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

func (s *LocalStore) path(locator string) string {
	// filepath.Join cleans "..", keeping reads inside the root.
	return filepath.Join(s.root, filepath.Clean("/"+locator))
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return key, nil
}

func (s *LocalStore) Get(ctx context.Context, locator string) ([]byte, error) {
	data, err := os.ReadFile(s.path(locator))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

// Delete removes the file. A missing file is not an error.
func (s *LocalStore) Delete(ctx context.Context, locator string) error {
	err := os.Remove(s.path(locator))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) ResolveURL(locator string) string {
	return joinURL(s.publicBase, locator)
}
