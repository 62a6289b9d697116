package data

import (
	"github.com/pkg/errors"

	"powersimdata/internal/config"
)

// NewDataAccess returns the data access matching the deployment mode: SSH
// to the data server in server mode, and the local data root otherwise. A
// configured blob_url replaces the local root with the HTTP blob store.
func NewDataAccess(cfg *config.Config) (DataAccess, error) {
	switch cfg.DeploymentMode {
	case config.DeploymentServer:
		return NewSSHDataAccess(cfg)
	case config.DeploymentContainer, config.DeploymentLocal, "":
		if cfg.BlobURL != "" {
			return NewHTTPDataAccess(cfg.BlobURL), nil
		}
		return NewLocalDataAccess(cfg.DataRootDir), nil
	}
	return nil, errors.Errorf("unknown deployment mode %q", cfg.DeploymentMode)
}
