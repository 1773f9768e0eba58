package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPConfig is the remote destination's config.
type SFTPConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Username    string        `koanf:"username"`
	Password    string        `koanf:"password"`
	RemotePath  string        `koanf:"remote_path"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

// SFTP uploads artifacts to a remote SFTP server. A connection is
// established and torn down per delivery. A failed upload is best-effort:
// there is no guarantee the remote file is absent or complete afterwards.
type SFTP struct {
	cfg SFTPConfig
	lo  *slog.Logger
}

// NewSFTP returns an SFTP target for the given remote destination.
func NewSFTP(cfg SFTPConfig, lo *slog.Logger) (*SFTP, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" || cfg.RemotePath == "" {
		return nil, fmt.Errorf("delivery.sftp requires host, username, password and remote_path")
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 30 * time.Second
	}

	return &SFTP{cfg: cfg, lo: lo}, nil
}

func (t *SFTP) Deliver(ctx context.Context, filename string, b []byte) error {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))

	// Password auth without host key verification. Credential hardening is
	// the operator's responsibility.
	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            t.cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(t.cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         t.cfg.DialTimeout,
	})
	if err != nil {
		return &DeliveryError{Method: MethodSFTP, Err: fmt.Errorf("error connecting to %s: %w", addr, err)}
	}
	defer conn.Close()

	cl, err := sftp.NewClient(conn)
	if err != nil {
		return &DeliveryError{Method: MethodSFTP, Err: err}
	}
	defer cl.Close()

	// Create the remote directory if it's missing. Best-effort; the upload
	// itself will report the real failure if this doesn't stick.
	if _, err := cl.Stat(t.cfg.RemotePath); err != nil {
		if err := cl.MkdirAll(t.cfg.RemotePath); err != nil {
			t.lo.Warn("could not create remote directory", "path", t.cfg.RemotePath, "error", err)
		}
	}

	remote := path.Join(t.cfg.RemotePath, filename)
	f, err := cl.Create(remote)
	if err != nil {
		return &DeliveryError{Method: MethodSFTP, Err: fmt.Errorf("error creating remote file %s: %w", remote, err)}
	}

	if _, err := f.Write(b); err != nil {
		f.Close()
		return &DeliveryError{Method: MethodSFTP, Err: fmt.Errorf("error writing remote file %s: %w", remote, err)}
	}
	if err := f.Close(); err != nil {
		return &DeliveryError{Method: MethodSFTP, Err: err}
	}

	t.lo.Info("file uploaded via sftp", "host", t.cfg.Host, "path", remote, "bytes", len(b))

	return nil
}
