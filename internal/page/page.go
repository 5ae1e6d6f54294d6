// Package page models a single newspaper page file and the in-house
// filename convention it is named under.
//
// A page file is either an InDesign document or a PDF. Its name encodes an
// optional one-letter prefix, one or two page numbers (two for a spread),
// a section, and the edition date:
//
//	1_Front_040516.indd
//	4-5_advert_Home_280414.indd
//	W4_Back_240314.indd
//	1_Front_03082017.pdf
package page

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/morningstar/pagetool/internal/helpers"
)

// ErrInvalidName is returned by Parse for filenames that do not follow the
// page naming convention.
var ErrInvalidName = errors.New("invalid page filename")

// nameRegex captures, in order: prefix, first page number, second page
// number (spreads), section, date, extension. Separator runs of "-", "_"
// and spaces around the section are consumed but not captured. Dates are
// six or eight digits, optionally hyphenated (DDMMYY, DDMMYYYY, DD-MM-YY,
// DD-MM-YYYY).
var nameRegex = regexp.MustCompile(
	`(?i)^([A-Z]?)(\d+)(?:-(\d+))?[-_ ]*(\D+?)[-_ ]*(\d{6}|\d{8}|\d{2}-\d{2}-(?:\d{2}|\d{4}))\.(indd|pdf)$`)

// Page represents a page file on disk.
type Page struct {
	// Path is the file's location, with any leading ~ expanded.
	Path string
	// Prefix is an optional single letter in front of the page numbers,
	// used for supplements and wraps. Empty for regular pages.
	Prefix string
	// Numbers holds one page number, or two for a spread.
	Numbers []int
	// Section is the section name, with separator characters trimmed from
	// both ends. Interior separators are kept ("advert_Home").
	Section string
	// Date is the edition date at midnight UTC.
	Date time.Time
	// Type is the lowercased file extension, "indd" or "pdf".
	Type string
}

// Parse builds a Page from a path to a page file. The path's basename must
// follow the page naming convention; otherwise an error wrapping
// ErrInvalidName is returned.
func Parse(path string) (*Page, error) {
	expanded, err := helpers.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(expanded)
	m := nameRegex.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidName, name)
	}

	numbers := make([]int, 0, 2)
	first, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidName, name, err)
	}
	numbers = append(numbers, first)
	if m[3] != "" {
		second, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidName, name, err)
		}
		numbers = append(numbers, second)
	}

	digits := strings.ReplaceAll(m[5], "-", "")
	layout := "020106"
	if len(digits) == 8 {
		layout = "02012006"
	}
	date, err := time.Parse(layout, digits)
	if err != nil {
		// Matched the date shape but not a real date, e.g. 310216.
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidName, name, err)
	}

	return &Page{
		Path:    expanded,
		Prefix:  m[1],
		Numbers: numbers,
		Section: m[4],
		Date:    date,
		Type:    strings.ToLower(m[6]),
	}, nil
}

// String returns the name of the underlying file.
func (p *Page) String() string {
	return filepath.Base(p.Path)
}

// ExternalName returns the name used outside the Star to identify the page.
//
// Single pages format as MS_2016_05_04_001.pdf, spreads join both numbers
// (MS_2016_05_04_002-003.indd), and any prefix comes before the year
// (MS_A_2016_05_04_001.pdf). Page numbers are zero-padded to three digits
// so external listings sort by date, then page.
func (p *Page) ExternalName() string {
	nums := make([]string, len(p.Numbers))
	for i, n := range p.Numbers {
		nums[i] = fmt.Sprintf("%03d", n)
	}

	parts := []string{"MS"}
	if p.Prefix != "" {
		parts = append(parts, p.Prefix)
	}
	parts = append(parts, p.Date.Format("2006_01_02"), strings.Join(nums, "-"))
	return strings.Join(parts, "_") + "." + p.Type
}

// compare orders pages by date, then type, prefix, page numbers and
// case-insensitive section. This groups each edition's files together,
// then each file type, then prefixed runs, before the page order takes
// effect. The section only matters when everything else ties.
func (p *Page) compare(other *Page) int {
	switch {
	case p.Date.Before(other.Date):
		return -1
	case p.Date.After(other.Date):
		return 1
	}
	if c := strings.Compare(p.Type, other.Type); c != 0 {
		return c
	}
	if c := strings.Compare(p.Prefix, other.Prefix); c != 0 {
		return c
	}
	if c := compareNumbers(p.Numbers, other.Numbers); c != 0 {
		return c
	}
	return strings.Compare(strings.ToLower(p.Section), strings.ToLower(other.Section))
}

// compareNumbers orders page number lists elementwise; on a shared prefix
// the shorter list sorts first, so 4_Ad sorts before 4-5_Ad.
func compareNumbers(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Less reports whether p sorts before other.
func (p *Page) Less(other *Page) bool {
	return p.compare(other) < 0
}

// Equal reports whether p and other represent the same page: same date,
// type, prefix and numbers, with sections compared case-insensitively.
// The paths may differ.
func (p *Page) Equal(other *Page) bool {
	return p.compare(other) == 0
}

// Sort sorts pages in place into the order described by Less.
func Sort(pages []*Page) {
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Less(pages[j])
	})
}
