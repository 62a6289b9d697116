package data

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	pathpkg "path"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"powersimdata/internal/config"
)

// SSHDataAccess reads files on the data server over SSH.
// Relative paths resolve against root.
type SSHDataAccess struct {
	addr   string
	root   string
	config *ssh.ClientConfig

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHDataAccess prepares a connection to cfg.ServerAddress. The
// connection itself is opened on first use.
func NewSSHDataAccess(cfg *config.Config) (*SSHDataAccess, error) {
	user, err := cfg.GetServerUser()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.SSHTimeout()
	if err != nil {
		return nil, err
	}
	key, err := os.ReadFile(cfg.SSH.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read ssh key")
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse ssh key")
	}
	hostKey, err := hostKeyCallback(cfg.SSH.KnownHostsFile)
	if err != nil {
		return nil, err
	}
	port := cfg.SSH.Port
	if port == 0 {
		port = 22
	}
	return NewSSHDataAccessWithConfig(
		net.JoinHostPort(cfg.ServerAddress, strconv.Itoa(port)),
		cfg.DataRootDir,
		&ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: hostKey,
			Timeout:         timeout,
		},
	), nil
}

// NewSSHDataAccessWithConfig uses a ready client config.
func NewSSHDataAccessWithConfig(addr, root string, cc *ssh.ClientConfig) *SSHDataAccess {
	return &SSHDataAccess{addr: addr, root: root, config: cc}
}

func hostKeyCallback(path string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(path); err != nil {
		log.WithField("known_hosts", path).Warn("No known_hosts file, server host key is not checked")
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return cb, nil
}

func (a *SSHDataAccess) connect() (*ssh.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}
	client, err := ssh.Dial("tcp", a.addr, a.config)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", a.addr)
	}
	log.WithFields(log.Fields{"server": a.addr, "user": a.config.User}).Info("Connected to data server")
	a.client = client
	return client, nil
}

// Open reads the remote file with cat. A missing file exits with
// notFoundStatus before cat runs.
func (a *SSHDataAccess) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	client, err := a.connect()
	if err != nil {
		return nil, err
	}
	session, err := client.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open ssh session")
	}
	defer session.Close()

	if !strings.HasPrefix(path, "/") {
		path = pathpkg.Join(a.root, path)
	}
	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		q := shellQuote(path)
		done <- session.Run("test -f " + q + " || exit 44; cat " + q)
	}()
	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return nil, ctx.Err()
	case err = <-done:
	}
	if err != nil {
		var exit *ssh.ExitError
		if errors.As(err, &exit) && exit.ExitStatus() == notFoundStatus {
			return nil, errors.Wrapf(ErrNotFound, "%s:%s", a.addr, path)
		}
		return nil, errors.Wrapf(err, "failed to read %s: %s", path, strings.TrimSpace(stderr.String()))
	}
	return io.NopCloser(&stdout), nil
}

const notFoundStatus = 44

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (a *SSHDataAccess) Describe() string { return "ssh:" + a.addr }

func (a *SSHDataAccess) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}
