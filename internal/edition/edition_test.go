package edition

import (
	"errors"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"

	"github.com/morningstar/pagetool/internal/testutil"
)

const pagesRoot = "/srv/Server/Pages"

func locatorOver(t *testing.T, seed func(write func(path, content string), mkdir func(path string))) *Locator {
	t.Helper()
	fsys := memfs.New()
	seed(
		func(path, content string) { testutil.WriteFile(t, fsys, path, content) },
		func(path string) { testutil.MkdirAll(t, fsys, path) },
	)
	loc, err := NewLocator(fsys, pagesRoot, Layouts{}, nil)
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}
	return loc
}

func TestDir(t *testing.T) {
	// 31 December 1929 was a Tuesday.
	day := time.Date(1929, time.December, 31, 0, 0, 0, 0, time.UTC)

	loc := locatorOver(t, func(write func(path, content string), mkdir func(path string)) {
		mkdir(pagesRoot + "/1929-12-31 Tuesday Dec 31")
	})

	dir, err := loc.Dir(day)
	if err != nil {
		t.Fatalf("Dir error: %v", err)
	}
	want := pagesRoot + "/1929-12-31 Tuesday Dec 31"
	if dir != want {
		t.Errorf("Dir = %q, want %q", dir, want)
	}
}

func TestDirUnpaddedDayOfMonth(t *testing.T) {
	day := time.Date(2017, time.August, 2, 0, 0, 0, 0, time.UTC)

	loc := locatorOver(t, func(write func(path, content string), mkdir func(path string)) {
		mkdir(pagesRoot + "/2017-08-02 Wednesday Aug 2")
	})

	dir, err := loc.Dir(day)
	if err != nil {
		t.Fatalf("Dir error: %v", err)
	}
	if want := pagesRoot + "/2017-08-02 Wednesday Aug 2"; dir != want {
		t.Errorf("Dir = %q, want %q", dir, want)
	}
}

func TestDirMissing(t *testing.T) {
	loc := locatorOver(t, func(write func(path, content string), mkdir func(path string)) {
		mkdir(pagesRoot)
	})

	day := time.Date(1929, time.December, 31, 0, 0, 0, 0, time.UTC)
	_, err := loc.Dir(day)
	if err == nil {
		t.Fatal("Dir found an edition that does not exist")
	}
	if !errors.Is(err, ErrNoEdition) {
		t.Errorf("Dir error = %v, want ErrNoEdition", err)
	}
}

func TestInDesignFiles(t *testing.T) {
	day := time.Date(1929, time.December, 31, 0, 0, 0, 0, time.UTC)
	ed := pagesRoot + "/1929-12-31 Tuesday Dec 31"

	loc := locatorOver(t, func(write func(path, content string), mkdir func(path string)) {
		write(ed+"/2_Home_311229.indd", "x")
		write(ed+"/1_Front_311229.indd", "x")
		// Supplements live in subdirectories and must still be found.
		write(ed+"/Supplement/A1_Insert_311229.indd", "x")
		// Non-page and non-InDesign files are skipped.
		write(ed+"/notes.txt", "x")
		write(ed+"/Scrap.indd", "x")
		write(ed+"/1_Front_311229.pdf", "x")
	})

	pages, err := loc.InDesignFiles(day)
	if err != nil {
		t.Fatalf("InDesignFiles error: %v", err)
	}

	want := []string{
		"1_Front_311229.indd",
		"2_Home_311229.indd",
		"A1_Insert_311229.indd",
	}
	if len(pages) != len(want) {
		t.Fatalf("got %d pages, want %d", len(pages), len(want))
	}
	for i, p := range pages {
		if p.String() != want[i] {
			t.Errorf("position %d: got %s, want %s", i, p, want[i])
		}
		if p.Type != "indd" {
			t.Errorf("%s: Type = %q, want indd", p, p.Type)
		}
	}
}

func TestPressPDFs(t *testing.T) {
	day := time.Date(1929, time.December, 31, 0, 0, 0, 0, time.UTC)
	ed := pagesRoot + "/1929-12-31 Tuesday Dec 31"

	loc := locatorOver(t, func(write func(path, content string), mkdir func(path string)) {
		write(ed+"/PDFs 311229/2_Home_311229.pdf", "x")
		write(ed+"/PDFs 311229/1_Front_311229.pdf", "x")
		write(ed+"/PDFs 311229/proof.pdf", "x")
		// InDesign files in the PDFs directory are not PDF pages.
		write(ed+"/PDFs 311229/1_Front_311229.indd", "x")
	})

	pages, err := loc.PressPDFs(day)
	if err != nil {
		t.Fatalf("PressPDFs error: %v", err)
	}

	want := []string{"1_Front_311229.pdf", "2_Home_311229.pdf"}
	if len(pages) != len(want) {
		t.Fatalf("got %d pages, want %d", len(pages), len(want))
	}
	for i, p := range pages {
		if p.String() != want[i] {
			t.Errorf("position %d: got %s, want %s", i, p, want[i])
		}
		if p.Type != "pdf" {
			t.Errorf("%s: Type = %q, want pdf", p, p.Type)
		}
	}
}

func TestWebPDFs(t *testing.T) {
	day := time.Date(1929, time.December, 31, 0, 0, 0, 0, time.UTC)
	ed := pagesRoot + "/1929-12-31 Tuesday Dec 31"

	loc := locatorOver(t, func(write func(path, content string), mkdir func(path string)) {
		write(ed+"/E-edition PDFs 311229/1_Front_311229.pdf", "x")
	})

	pages, err := loc.WebPDFs(day)
	if err != nil {
		t.Fatalf("WebPDFs error: %v", err)
	}
	if len(pages) != 1 || pages[0].String() != "1_Front_311229.pdf" {
		t.Errorf("WebPDFs = %v, want the one seeded page", pages)
	}
}

func TestPDFsDirMissing(t *testing.T) {
	// The edition can exist before its PDFs directory does; that is an
	// empty listing, not an error.
	day := time.Date(1929, time.December, 31, 0, 0, 0, 0, time.UTC)
	ed := pagesRoot + "/1929-12-31 Tuesday Dec 31"

	loc := locatorOver(t, func(write func(path, content string), mkdir func(path string)) {
		write(ed+"/1_Front_311229.indd", "x")
	})

	pages, err := loc.PressPDFs(day)
	if err != nil {
		t.Fatalf("PressPDFs error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("PressPDFs = %v, want empty", pages)
	}
}

func TestLocatorExpandsRoot(t *testing.T) {
	home := testutil.WithTempHome(t)

	fsys := memfs.New()
	loc, err := NewLocator(fsys, "~/Server/Pages", Layouts{}, nil)
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}
	if loc.root != home+"/Server/Pages" {
		t.Errorf("root = %q, want %q", loc.root, home+"/Server/Pages")
	}
}

func TestCustomLayouts(t *testing.T) {
	day := time.Date(2016, time.May, 4, 0, 0, 0, 0, time.UTC)

	fsys := memfs.New()
	testutil.MkdirAll(t, fsys, pagesRoot+"/040516")
	loc, err := NewLocator(fsys, pagesRoot, Layouts{Edition: "020106"}, nil)
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}

	dir, err := loc.Dir(day)
	if err != nil {
		t.Fatalf("Dir error: %v", err)
	}
	if want := pagesRoot + "/040516"; dir != want {
		t.Errorf("Dir = %q, want %q", dir, want)
	}
}
