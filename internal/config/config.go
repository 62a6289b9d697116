package config

import (
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DeploymentMode selects how scenario data is reached.
type DeploymentMode string

const (
	DeploymentLocal     DeploymentMode = "local"
	DeploymentServer    DeploymentMode = "server"
	DeploymentContainer DeploymentMode = "container"
)

const (
	DefaultServerAddress = "becompute01.gatesventures.com"
	DefaultDataRootDir   = "/mnt/bes/pcm"
	DefaultModelDir      = "/home/bes/pcm"

	// ServerUserEnv overrides every other source of the server login.
	ServerUserEnv = "BE_SERVER_USER"
	// ServerUserFile is looked up next to the config file.
	ServerUserFile = ".server_user"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	ServerAddress  string         `yaml:"server_address"`
	DataRootDir    string         `yaml:"data_root_dir"`
	LocalDir       string         `yaml:"local_dir"`
	ModelDir       string         `yaml:"model_dir"`
	DeploymentMode DeploymentMode `yaml:"deployment_mode"`
	// GridDataDir holds the TAMU network CSVs (bus.csv, plant.csv, ...).
	GridDataDir string `yaml:"grid_data_dir"`
	// BlobURL is the HTTP root of the data tree. When set, it is used in
	// place of DataRootDir outside server mode.
	BlobURL    string      `yaml:"blob_url"`
	ServerUser string      `yaml:"server_user"`
	SSH        SSHConfig   `yaml:"ssh"`
	Cache      CacheConfig `yaml:"cache"`
	API        APIConfig   `yaml:"api"`

	// dir of the loaded file, used to find .server_user
	dir string
}

type SSHConfig struct {
	Port           int    `yaml:"port"`
	KeyFile        string `yaml:"key_file"`
	KnownHostsFile string `yaml:"known_hosts_file"`
	Timeout        string `yaml:"timeout"`
}

type CacheConfig struct {
	// Memory enables the in-process profile cache in front of the local files.
	Memory   bool   `yaml:"memory"`
	TTL      string `yaml:"ttl"`
	GridSize int    `yaml:"grid_size"`
}

type APIConfig struct {
	Port      string `yaml:"port"`
	Env       string `yaml:"env"`
	StaticDir string `yaml:"static_dir"`
	// AllowedOrigins is the CORS allow list; empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the built-in server setup.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		ServerAddress:  DefaultServerAddress,
		DataRootDir:    DefaultDataRootDir,
		LocalDir:       filepath.Join(home, "ScenarioData") + string(filepath.Separator),
		ModelDir:       DefaultModelDir,
		DeploymentMode: DeploymentLocal,
		GridDataDir:    filepath.Join("data", "grid"),
		SSH: SSHConfig{
			Port:           22,
			KeyFile:        filepath.Join(home, ".ssh", "id_rsa"),
			KnownHostsFile: filepath.Join(home, ".ssh", "known_hosts"),
			Timeout:        "30s",
		},
		Cache: CacheConfig{
			TTL:      "1h",
			GridSize: 8,
		},
		API: APIConfig{
			Port:      "8080",
			StaticDir: "./web/dist",
		},
	}
}

// Load reads path over the defaults, applies env overrides and validates.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// An empty path yields the defaults plus env overrides.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config")
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config %s", path)
		}
		c.dir = filepath.Dir(path)
		if c.GridDataDir != "" && !filepath.IsAbs(c.GridDataDir) {
			// Relative paths resolve against the config file when that exists.
			cand := filepath.Join(c.dir, c.GridDataDir)
			if _, err := os.Stat(cand); err == nil {
				c.GridDataDir = cand
			}
		}
	}
	c.applyEnvOverrides()
	return c, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PSD_DEPLOYMENT_MODE"); v != "" {
		c.DeploymentMode = DeploymentMode(strings.ToLower(v))
	}
	if v := os.Getenv("PSD_DATA_ROOT_DIR"); v != "" {
		c.DataRootDir = v
	}
	if v := os.Getenv("PSD_LOCAL_DIR"); v != "" {
		c.LocalDir = v
	}
	if v := os.Getenv("PSD_GRID_DATA_DIR"); v != "" {
		c.GridDataDir = v
	}
	if v := os.Getenv("PSD_BLOB_URL"); v != "" {
		c.BlobURL = v
	}
	if v := os.Getenv("PSD_MEMORY_CACHE"); v != "" {
		c.Cache.Memory = v == "true"
	}
	if v := os.Getenv("API_PORT"); v != "" {
		c.API.Port = v
	}
	if v := os.Getenv("API_ENV"); v != "" {
		c.API.Env = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.API.StaticDir = v
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	var result *multierror.Error
	switch c.DeploymentMode {
	case DeploymentLocal, DeploymentServer, DeploymentContainer:
	default:
		result = multierror.Append(result, errors.Errorf("deployment_mode %q is not one of local, server, container", c.DeploymentMode))
	}
	if c.DataRootDir == "" {
		result = multierror.Append(result, errors.New("data_root_dir is required"))
	}
	if c.LocalDir == "" {
		result = multierror.Append(result, errors.New("local_dir is required"))
	}
	if c.DeploymentMode == DeploymentServer && c.ServerAddress == "" {
		result = multierror.Append(result, errors.New("server_address is required in server mode"))
	}
	if _, err := c.CacheTTL(); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := c.SSHTimeout(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Cache.GridSize < 0 {
		result = multierror.Append(result, errors.New("cache.grid_size must be >= 0"))
	}
	return result.ErrorOrNil()
}

// ScenarioList is the server path of the scenario list.
func (c *Config) ScenarioList() string { return path.Join(c.DataRootDir, "ScenarioList.csv") }

// ExecuteList is the server path of the execute list.
func (c *Config) ExecuteList() string { return path.Join(c.DataRootDir, "ExecuteList.csv") }

func (c *Config) ExecuteDir() string     { return path.Join(c.DataRootDir, "tmp") }
func (c *Config) BaseProfileDir() string { return path.Join(c.DataRootDir, "raw") }
func (c *Config) InputDir() string       { return path.Join(c.DataRootDir, "data/input") }
func (c *Config) OutputDir() string      { return path.Join(c.DataRootDir, "data/output") }

// CacheTTL parses cache.ttl; empty means one hour.
func (c *Config) CacheTTL() (time.Duration, error) {
	return parseDuration("cache.ttl", c.Cache.TTL, time.Hour)
}

// SSHTimeout parses ssh.timeout; empty means thirty seconds.
func (c *Config) SSHTimeout() (time.Duration, error) {
	return parseDuration("ssh.timeout", c.SSH.Timeout, 30*time.Second)
}

func parseDuration(key, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s must be positive", key)
	}
	return d, nil
}

// GetServerUser returns the first username found using the following sources:
//   - BE_SERVER_USER environment variable
//   - server_user in the config file
//   - .server_user file next to the config file
//   - username of the active login.
func (c *Config) GetServerUser() (string, error) {
	if u := os.Getenv(ServerUserEnv); u != "" {
		return u, nil
	}
	if c.ServerUser != "" {
		return c.ServerUser, nil
	}
	dir := c.dir
	if dir == "" {
		dir = "."
	}
	if raw, err := os.ReadFile(filepath.Join(dir, ServerUserFile)); err == nil {
		if u := strings.TrimSpace(string(raw)); u != "" {
			return u, nil
		}
	}
	current, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine server user")
	}
	return current.Username, nil
}
