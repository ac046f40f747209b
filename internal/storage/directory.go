// Package storage implements the attribute-store engine: the domain
// directory, the per-domain dynamic attribute table, and the restricted
// select translator, over one SQLite file per domain in a data directory.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// domainNameRe is the domain name rule from the SimpleDB developer guide.
var domainNameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,255}$`)

// sqliteSideSuffixes are transient SQLite companion files that must not be
// reported as domains by a directory scan.
var sqliteSideSuffixes = []string{"-journal", "-wal", "-shm"}

// Directory locates the backing stores for a set of domains under one data
// directory. It owns domain existence; the item and select services own
// the schema and rows within a single domain's store.
type Directory struct {
	dataDir string
}

// NewDirectory returns a Directory rooted at dataDir, creating it if
// needed.
func NewDirectory(dataDir string) (*Directory, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Directory{dataDir: dataDir}, nil
}

// path returns the backing file for a domain name. Callers validate the
// name first; the charset rule keeps it a single path element.
func (d *Directory) path(domain string) string {
	return filepath.Join(d.dataDir, domain)
}

// Exists reports whether a domain has a backing store.
func (d *Directory) Exists(domain string) bool {
	if !domainNameRe.MatchString(domain) {
		return false
	}
	_, err := os.Stat(d.path(domain))
	return err == nil
}

// scan returns the domain names currently present. Order is unspecified.
func (d *Directory) scan() ([]string, error) {
	entries, err := os.ReadDir(d.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan data directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if hasSideSuffix(name) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func hasSideSuffix(name string) bool {
	for _, suffix := range sqliteSideSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// open opens a domain's backing store, creating the file if absent.
func (d *Directory) open(domain string) (*sql.DB, error) {
	return openDB(d.path(domain))
}

// remove deletes a domain's backing store and any companion files left by
// an interrupted writer. A missing store is not an error.
func (d *Directory) remove(domain string) error {
	path := d.path(domain)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete domain store: %w", err)
	}
	for _, suffix := range sqliteSideSuffixes {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete domain store: %w", err)
		}
	}
	return nil
}
