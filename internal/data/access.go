package data

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by a DataAccess when the path does not exist.
var ErrNotFound = errors.New("file not found")

// DataAccess reads files of the scenario data tree.
type DataAccess interface {
	// Open returns the file content or an error wrapping ErrNotFound.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Describe names the backend for logs.
	Describe() string
	Close() error
}

// LocalDataAccess reads from the local filesystem. Relative paths resolve
// against Root.
type LocalDataAccess struct {
	Root string
}

func NewLocalDataAccess(root string) *LocalDataAccess {
	return &LocalDataAccess{Root: root}
}

func (a *LocalDataAccess) resolve(path string) string {
	if filepath.IsAbs(path) || a.Root == "" {
		return path
	}
	return filepath.Join(a.Root, path)
}

func (a *LocalDataAccess) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := a.resolve(path)
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s", p)
		}
		return nil, errors.Wrapf(err, "failed to open %s", p)
	}
	return f, nil
}

func (a *LocalDataAccess) Describe() string { return "local:" + a.Root }

func (a *LocalDataAccess) Close() error { return nil }
