package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"

	"github.com/dmitrijs2005/scribblenest/internal/filex"
)

// LocalURLPrefix is where the web server mounts the local store.
const LocalURLPrefix = "/uploads/"

// LocalStore writes images into one directory.
type LocalStore struct {
	dir string
}

// NewLocalStore resolves dir (relative names against the working directory)
// and creates it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

// Dir is the absolute directory the store writes to.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(_ context.Context, name string, body io.Reader, _ int64, _ string) error {
	path, err := filex.SafeJoin(s.dir, name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	path, err := filex.SafeJoin(s.dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(_ context.Context, name string) (string, error) {
	return LocalURLPrefix + url.PathEscape(name), nil
}
