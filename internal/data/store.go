package data

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// LocalStore is the local directory downloaded files are kept in.
type LocalStore struct {
	Dir string
}

func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Open returns the stored file or an error wrapping ErrNotFound.
func (s *LocalStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s", s.Path(name))
		}
		return nil, errors.Wrapf(err, "failed to open %s", s.Path(name))
	}
	return f, nil
}

func (s *LocalStore) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// Save writes raw under name. The file appears atomically: content goes to
// a temporary sibling first and is renamed into place.
func (s *LocalStore) Save(name string, raw []byte) error {
	// Ensure directory exists
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}
	final := s.Path(name)
	tmp := filepath.Join(s.Dir, "."+name+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "failed to move %s into place", final)
	}
	return nil
}

// SaveJSON stores v as indented JSON.
func (s *LocalStore) SaveJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", name)
	}
	return s.Save(name, raw)
}

// LoadJSON decodes a stored JSON file into v.
func (s *LocalStore) LoadJSON(name string, v any) error {
	rc, err := s.Open(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	return decodeJSON(rc, v)
}

func decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "failed to parse json")
	}
	return nil
}
