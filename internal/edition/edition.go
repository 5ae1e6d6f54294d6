// Package edition locates dated edition directories on the pages server
// and enumerates the page files inside them.
//
// An edition lives in a directory named after its date, e.g.
// "2017-08-02 Wednesday Aug 2", under the pages root. Pre-press and
// e-edition PDFs sit in dated subdirectories of the edition directory.
package edition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/morningstar/pagetool/internal/helpers"
	"github.com/morningstar/pagetool/internal/page"
)

// ErrNoEdition is returned when no edition directory exists for a date.
var ErrNoEdition = errors.New("no edition found")

// Default directory name templates, as Go time layouts.
const (
	DefaultPagesRoot     = "~/Server/Pages"
	DefaultEditionLayout = "2006-01-02 Monday Jan 2"
	DefaultPressLayout   = "PDFs 020106"
	DefaultWebLayout     = "E-edition PDFs 020106"
)

// Layouts holds the time layouts used to build directory names. Zero-value
// fields fall back to the defaults above.
type Layouts struct {
	Edition string
	Press   string
	Web     string
}

func (l Layouts) withDefaults() Layouts {
	if l.Edition == "" {
		l.Edition = DefaultEditionLayout
	}
	if l.Press == "" {
		l.Press = DefaultPressLayout
	}
	if l.Web == "" {
		l.Web = DefaultWebLayout
	}
	return l
}

// Locator finds editions and their page files under a pages root.
type Locator struct {
	fs      billy.Filesystem
	root    string
	layouts Layouts
	log     *zap.Logger
}

// NewLocator creates a Locator over fsys rooted at root. A leading ~ in
// root is expanded. A nil logger disables logging.
func NewLocator(fsys billy.Filesystem, root string, layouts Layouts, log *zap.Logger) (*Locator, error) {
	if root == "" {
		root = DefaultPagesRoot
	}
	expanded, err := helpers.ExpandHome(root)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{
		fs:      fsys,
		root:    expanded,
		layouts: layouts.withDefaults(),
		log:     log,
	}, nil
}

// Dir returns the path to date's edition directory, or an error wrapping
// ErrNoEdition if it does not exist.
func (l *Locator) Dir(date time.Time) (string, error) {
	dir := l.fs.Join(l.root, date.Format(l.layouts.Edition))
	if _, err := l.fs.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w for %s", ErrNoEdition, date.Format("2006-01-02"))
		}
		return "", fmt.Errorf("stat edition dir %q: %w", dir, err)
	}
	l.log.Debug("resolved edition directory", zap.String("dir", dir))
	return dir, nil
}

// InDesignFiles lists the InDesign pages for date's edition, sorted.
func (l *Locator) InDesignFiles(date time.Time) ([]*page.Page, error) {
	dir, err := l.Dir(date)
	if err != nil {
		return nil, err
	}
	return l.DirInDesignFiles(dir)
}

// DirInDesignFiles lists all InDesign pages in dir and its subdirectories,
// sorted. The walk is recursive, unlike the PDF listings, because
// supplements and inserts are often kept in subdirectories instead of in
// the root of the edition directory. Files that do not parse as pages are
// skipped.
func (l *Locator) DirInDesignFiles(dir string) ([]*page.Page, error) {
	var pages []*page.Page
	err := util.Walk(l.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".indd") {
			return nil
		}
		p, perr := page.Parse(path)
		if perr != nil {
			l.log.Debug("skipping non-page file", zap.String("path", path), zap.Error(perr))
			return nil
		}
		pages = append(pages, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", dir, err)
	}
	page.Sort(pages)
	return pages, nil
}

// PressPDFs lists the pre-press PDF pages for date's edition, sorted.
func (l *Locator) PressPDFs(date time.Time) ([]*page.Page, error) {
	return l.pdfs(date, l.layouts.Press)
}

// WebPDFs lists the low-quality e-edition PDF pages for date's edition,
// sorted.
func (l *Locator) WebPDFs(date time.Time) ([]*page.Page, error) {
	return l.pdfs(date, l.layouts.Web)
}

func (l *Locator) pdfs(date time.Time, layout string) ([]*page.Page, error) {
	dir, err := l.Dir(date)
	if err != nil {
		return nil, err
	}

	sub := l.fs.Join(dir, date.Format(layout))
	entries, err := l.fs.ReadDir(sub)
	if err != nil {
		// The PDFs directory may not exist yet, even when the edition does.
		if os.IsNotExist(err) {
			l.log.Debug("pdfs directory does not exist", zap.String("dir", sub))
			return nil, nil
		}
		return nil, fmt.Errorf("read pdfs dir %q: %w", sub, err)
	}

	var pages []*page.Page
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		p, perr := page.Parse(l.fs.Join(sub, entry.Name()))
		if perr != nil {
			l.log.Debug("skipping non-page file", zap.String("name", entry.Name()), zap.Error(perr))
			continue
		}
		pages = append(pages, p)
	}
	page.Sort(pages)
	return pages, nil
}
