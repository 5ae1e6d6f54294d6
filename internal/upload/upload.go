// Package upload sends parsed pages to FTP or SFTP delivery targets.
package upload

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/morningstar/pagetool/internal/page"
)

// Remote is a connection to a delivery server. Implementations are kept
// small so tests can substitute a fake.
type Remote interface {
	// Chdir changes the remote working directory. The path may be a chain
	// of subdirectories.
	Chdir(path string) error
	// Store uploads src under name in the current remote directory.
	Store(name string, src io.Reader) error
	Close() error
}

// Hooks receives notifications during a batch send.
type Hooks struct {
	// OnFile is called after each successful upload with the page, the
	// name it was stored under, and the number of bytes sent.
	OnFile func(p *page.Page, remoteName string, size int64)
}

// Options controls a batch send.
type Options struct {
	// RemotePath, when set, is changed into before any files are uploaded.
	RemotePath string
	// KeepNames uploads pages under their current filenames. The default
	// is to rename each page to its external name.
	KeepNames bool
	Hooks     Hooks
}

// Sender uploads batches of pages read from a filesystem.
type Sender struct {
	fs  billy.Filesystem
	log *zap.Logger
}

// NewSender creates a Sender reading local files from fsys. A nil fsys
// uses the host filesystem; a nil logger disables logging.
func NewSender(fsys billy.Filesystem, log *zap.Logger) *Sender {
	if fsys == nil {
		fsys = osfs.New("/")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{fs: fsys, log: log}
}

// Send uploads pages to remote one at a time, renaming each to its
// external name unless opts.KeepNames is set. The first failure aborts
// the batch; context cancellation is checked between files.
func (s *Sender) Send(ctx context.Context, remote Remote, pages []*page.Page, opts Options) error {
	if opts.RemotePath != "" {
		if err := remote.Chdir(opts.RemotePath); err != nil {
			return err
		}
		s.log.Debug("changed remote directory", zap.String("path", opts.RemotePath))
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("upload aborted: %w", err)
		}

		name := p.ExternalName()
		if opts.KeepNames {
			name = p.String()
		}

		size, err := s.sendOne(remote, p, name)
		if err != nil {
			return fmt.Errorf("upload %s: %w", p, err)
		}

		s.log.Info("uploaded page",
			zap.String("file", p.String()),
			zap.String("as", name),
			zap.String("size", humanize.Bytes(uint64(size))))
		if opts.Hooks.OnFile != nil {
			opts.Hooks.OnFile(p, name, size)
		}
	}
	return nil
}

func (s *Sender) sendOne(remote Remote, p *page.Page, name string) (int64, error) {
	f, err := s.fs.Open(p.Path)
	if err != nil {
		return 0, fmt.Errorf("open %q: %w", p.Path, err)
	}
	defer f.Close()

	counted := &countingReader{r: f}
	if err := remote.Store(name, counted); err != nil {
		return counted.n, err
	}
	return counted.n, nil
}

// countingReader tracks how many bytes have been read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
