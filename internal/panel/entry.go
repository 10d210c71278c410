// Package panel holds the directory-listing domain behind the two file
// panes: reading a directory into entries, sorting them, and tracking
// cursor and multi-selection per pane.
package panel

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one row in a panel listing.
type Entry struct {
	Name      string
	Path      string
	IsDir     bool
	IsSymlink bool
	Size      int64
	Mode      fs.FileMode
	ModTime   time.Time
}

// SortKey selects the listing order.
type SortKey int

const (
	SortName SortKey = iota
	SortSize
	SortModTime
)

func (k SortKey) String() string {
	switch k {
	case SortSize:
		return "size"
	case SortModTime:
		return "modified"
	default:
		return "name"
	}
}

// Sort is a listing order. Directories always group before files
// regardless of key.
type Sort struct {
	Key  SortKey
	Desc bool
}

// Next cycles name asc → name desc → size asc → ... → mtime desc → name asc.
func (s Sort) Next() Sort {
	if !s.Desc {
		return Sort{Key: s.Key, Desc: true}
	}
	switch s.Key {
	case SortName:
		return Sort{Key: SortSize}
	case SortSize:
		return Sort{Key: SortModTime}
	default:
		return Sort{Key: SortName}
	}
}

func (s Sort) String() string {
	dir := "asc"
	if s.Desc {
		dir = "desc"
	}
	return s.Key.String() + " " + dir
}

// List reads dir into sorted entries. Hidden entries (dot-prefixed) are
// dropped unless showHidden. Entries whose metadata cannot be read are
// listed with what Lstat-free information is available rather than
// aborting the whole listing.
func List(dir string, showHidden bool, order Sort) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		name := d.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		e := Entry{
			Name:      name,
			Path:      filepath.Join(dir, name),
			IsDir:     d.IsDir(),
			IsSymlink: d.Type()&fs.ModeSymlink != 0,
		}
		if info, err := d.Info(); err == nil {
			e.Mode = info.Mode()
			e.ModTime = info.ModTime()
			if info.Mode().IsRegular() {
				e.Size = info.Size()
			}
		}
		entries = append(entries, e)
	}

	sortEntries(entries, order)
	return entries, nil
}

func sortEntries(entries []Entry, order Sort) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		// Directory grouping is not affected by the sort direction.
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		c := compareEntries(a, b, order.Key)
		if order.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareEntries(a, b Entry, key SortKey) int {
	switch key {
	case SortSize:
		if a.Size != b.Size {
			if a.Size < b.Size {
				return -1
			}
			return 1
		}
	case SortModTime:
		if !a.ModTime.Equal(b.ModTime) {
			if a.ModTime.Before(b.ModTime) {
				return -1
			}
			return 1
		}
	}
	return compareNames(a.Name, b.Name)
}

func compareNames(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return strings.Compare(la, lb)
	}
	return strings.Compare(a, b)
}
