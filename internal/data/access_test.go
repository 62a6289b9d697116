package data

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powersimdata/internal/config"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(raw)
}

func TestLocalDataAccess(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data", "input"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "input", "a.csv"), []byte("x"), 0o644))

	a := NewLocalDataAccess(root)
	rc, err := a.Open(context.Background(), "data/input/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "x", readAll(t, rc))

	rc, err = a.Open(context.Background(), filepath.Join(root, "data", "input", "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "x", readAll(t, rc))

	_, err = a.Open(context.Background(), "data/input/b.csv")
	assert.True(t, errors.Is(err, ErrNotFound))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Open(ctx, "data/input/a.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPDataAccess(t *testing.T) {
	var flaky int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pcm/data/input/ok.csv":
			_, _ = w.Write([]byte("hello"))
		case "/pcm/data/input/flaky.csv":
			if atomic.AddInt32(&flaky, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("finally"))
		case "/pcm/data/input/secret.csv":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	a := NewHTTPDataAccess(srv.URL + "/pcm/")
	a.Delay = time.Millisecond
	ctx := context.Background()

	rc, err := a.Open(ctx, "data/input/ok.csv")
	require.NoError(t, err)
	assert.Equal(t, "hello", readAll(t, rc))

	rc, err = a.Open(ctx, "data/input/flaky.csv")
	require.NoError(t, err)
	assert.Equal(t, "finally", readAll(t, rc))
	assert.Equal(t, int32(3), atomic.LoadInt32(&flaky))

	_, err = a.Open(ctx, "data/input/missing.csv")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = a.Open(ctx, "data/input/secret.csv")
	var ae *AccessError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusForbidden, ae.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)

	assert.NoError(t, a.Close())
}

func TestNewDataAccess(t *testing.T) {
	cfg := config.Default()
	cfg.DataRootDir = t.TempDir()

	a, err := NewDataAccess(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalDataAccess{}, a)

	cfg.DeploymentMode = config.DeploymentContainer
	a, err = NewDataAccess(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalDataAccess{}, a)

	cfg.BlobURL = "http://blob.local/pcm"
	a, err = NewDataAccess(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http:http://blob.local/pcm", a.Describe())

	cfg.DeploymentMode = config.DeploymentLocal
	a, err = NewDataAccess(cfg)
	require.NoError(t, err)
	assert.IsType(t, &HTTPDataAccess{}, a)
	cfg.BlobURL = ""

	cfg.DeploymentMode = "cloud"
	_, err = NewDataAccess(cfg)
	assert.Error(t, err)

	cfg.DeploymentMode = config.DeploymentServer
	cfg.SSH.KeyFile = filepath.Join(t.TempDir(), "missing_key")
	_, err = NewDataAccess(cfg)
	assert.ErrorContains(t, err, "ssh key")
}
