package data

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrNotFoundAnywhere means a file is neither in the local directory nor
// on the server.
var ErrNotFoundAnywhere = errors.New("file found neither locally nor on server")

type decodeFunc func(io.Reader) (any, error)

// fetcher implements the lookup order shared by input and output data:
// memory, then the local directory, then the server. Server hits are
// decoded before they are saved, so a bad download never lands on disk.
type fetcher struct {
	kind      string
	remoteDir string
	remote    DataAccess
	store     *LocalStore
	memory    *MemoryCache
}

func (f *fetcher) get(ctx context.Context, file, field string, decode decodeFunc) (any, error) {
	logger := log.WithFields(log.Fields{"kind": f.kind, "file": file})
	key := GenerateCacheKey(f.kind, f.store.Dir, file)
	if v, ok := f.memory.Get(key); ok {
		retrievalCounter.WithLabelValues(f.kind, field, SourceMemory).Inc()
		return v, nil
	}

	rc, err := f.store.Open(file)
	switch {
	case err == nil:
		v, err := decodeAll(rc, decode)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode local %s", f.store.Path(file))
		}
		f.memory.Set(key, v)
		retrievalCounter.WithLabelValues(f.kind, field, SourceLocal).Inc()
		return v, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	logger.Info("Local file not found. Data will be downloaded from server and saved locally.")
	if f.remote == nil {
		retrievalMisses.WithLabelValues(f.kind, field).Inc()
		return nil, errors.Wrapf(ErrNotFoundAnywhere, "%s", file)
	}
	rc, err = f.remote.Open(ctx, path.Join(f.remoteDir, file))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			retrievalMisses.WithLabelValues(f.kind, field).Inc()
			return nil, errors.Wrapf(ErrNotFoundAnywhere, "%s", file)
		}
		return nil, errors.Wrapf(err, "failed to download %s", file)
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download %s", file)
	}
	downloadedBytes.WithLabelValues(f.kind).Add(float64(len(raw)))

	v, err := decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode downloaded %s", file)
	}
	logger.WithField("dir", f.store.Dir).Info("Saving file locally.")
	if err := f.store.Save(file, raw); err != nil {
		return nil, err
	}
	f.memory.Set(key, v)
	retrievalCounter.WithLabelValues(f.kind, field, SourceRemote).Inc()
	return v, nil
}

func decodeAll(rc io.ReadCloser, decode decodeFunc) (any, error) {
	defer rc.Close()
	return decode(rc)
}
