package upload

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jlaffaye/ftp"
)

const ftpDialTimeout = 30 * time.Second

// FTPRemote is a Remote backed by a plain FTP connection.
type FTPRemote struct {
	conn *ftp.ServerConn
}

// DialFTP connects and logs in to an FTP server. A zero port means the
// standard FTP port.
func DialFTP(ctx context.Context, host string, port int, user, password string) (*FTPRemote, error) {
	if port == 0 {
		port = 21
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(ftpDialTimeout))
	if err != nil {
		return nil, fmt.Errorf("dial ftp %s: %w", addr, err)
	}
	if err := conn.Login(user, password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("ftp login as %s: %w", user, err)
	}
	return &FTPRemote{conn: conn}, nil
}

// Chdir implements Remote.
func (r *FTPRemote) Chdir(path string) error {
	if err := r.conn.ChangeDir(path); err != nil {
		return fmt.Errorf("ftp cwd %q: %w", path, err)
	}
	return nil
}

// Store implements Remote.
func (r *FTPRemote) Store(name string, src io.Reader) error {
	if err := r.conn.Stor(name, src); err != nil {
		return fmt.Errorf("ftp stor %q: %w", name, err)
	}
	return nil
}

// Close sends QUIT and closes the connection.
func (r *FTPRemote) Close() error {
	return r.conn.Quit()
}
