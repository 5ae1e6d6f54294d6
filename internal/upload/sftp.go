package upload

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

const sshDialTimeout = 30 * time.Second

// ErrNoSFTPAuth is returned when neither a password nor an SSH agent is
// available for SFTP authentication.
var ErrNoSFTPAuth = errors.New("no password set and no ssh agent available")

// SFTPConfig describes an SFTP delivery server.
type SFTPConfig struct {
	Host string
	// Port defaults to 22.
	Port int
	User string
	// Password, when empty, switches authentication to the SSH agent
	// at SSH_AUTH_SOCK.
	Password string
	// KnownHosts is the path to a known_hosts file. When empty, any host
	// key is accepted.
	KnownHosts string
}

// SFTPRemote is a Remote backed by an SFTP session over SSH.
type SFTPRemote struct {
	client *sftp.Client
	conn   *ssh.Client
	wd     string
}

// DialSFTP connects to an SFTP server and opens a session.
func DialSFTP(cfg SFTPConfig) (*SFTPRemote, error) {
	port := cfg.Port
	if port == 0 {
		port = 22
	}

	auth, err := sftpAuthMethods(cfg)
	if err != nil {
		return nil, err
	}
	hostKeys, err := sftpHostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, port)
	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         sshDialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("dial ssh %s as %s: %w", addr, cfg.User, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open sftp session on %s: %w", addr, err)
	}
	return &SFTPRemote{client: client, conn: conn}, nil
}

func sftpAuthMethods(cfg SFTPConfig) ([]ssh.AuthMethod, error) {
	if cfg.Password != "" {
		return []ssh.AuthMethod{ssh.Password(cfg.Password)}, nil
	}

	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, ErrNoSFTPAuth
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("connect ssh agent: %w", err)
	}
	return []ssh.AuthMethod{ssh.PublicKeysCallback(agent.NewClient(conn).Signers)}, nil
}

func sftpHostKeyCallback(cfg SFTPConfig) (ssh.HostKeyCallback, error) {
	if cfg.KnownHosts == "" {
		// Matches the long-standing behavior of the delivery scripts,
		// which accepted whatever key the server presented.
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(cfg.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %q: %w", cfg.KnownHosts, err)
	}
	return cb, nil
}

// Chdir implements Remote. SFTP has no working directory, so the path is
// checked and prefixed onto subsequent store names.
func (r *SFTPRemote) Chdir(dir string) error {
	target := dir
	if r.wd != "" {
		target = path.Join(r.wd, dir)
	}
	info, err := r.client.Stat(target)
	if err != nil {
		return fmt.Errorf("sftp chdir %q: %w", target, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("sftp chdir %q: not a directory", target)
	}
	r.wd = target
	return nil
}

// Store implements Remote.
func (r *SFTPRemote) Store(name string, src io.Reader) error {
	target := name
	if r.wd != "" {
		target = path.Join(r.wd, name)
	}

	f, err := r.client.Create(target)
	if err != nil {
		return fmt.Errorf("sftp create %q: %w", target, err)
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return fmt.Errorf("sftp write %q: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sftp close %q: %w", target, err)
	}
	return nil
}

// Close closes the SFTP session and the underlying SSH connection.
func (r *SFTPRemote) Close() error {
	sessionErr := r.client.Close()
	if err := r.conn.Close(); err != nil {
		return err
	}
	return sessionErr
}
