package lotus

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// PackageCollection holds the packages discovered in a cache directory.
// Packages are recognized by their H.<name>.toc files.
type PackageCollection struct {
	directory        string
	postEnsmallening bool
	packages         map[string]*Package
}

// OpenPackageCollection scans directory and constructs a Package for every
// H.<name>.toc found.
func OpenPackageCollection(directory string, postEnsmallening bool) (*PackageCollection, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{What: fmt.Sprintf("cache directory %s", directory)}
		}
		return nil, xerrors.Errorf("scanning cache directory: %w", err)
	}

	c := &PackageCollection{
		directory:        directory,
		postEnsmallening: postEnsmallening,
		packages:         make(map[string]*Package),
	}
	for _, entry := range entries {
		name, ok := strings.CutPrefix(entry.Name(), "H.")
		if !ok {
			continue
		}
		name, ok = strings.CutSuffix(name, ".toc")
		if !ok || name == "" {
			continue
		}
		c.packages[name] = NewPackage(directory, name, postEnsmallening)
	}
	return c, nil
}

func (c *PackageCollection) Directory() string { return c.directory }

func (c *PackageCollection) IsPostEnsmallening() bool { return c.postEnsmallening }

// Package returns the package of the given name, or nil.
func (c *PackageCollection) Package(name string) *Package {
	return c.packages[name]
}

// Packages lists all discovered packages sorted by name.
func (c *PackageCollection) Packages() []*Package {
	names := make([]string, 0, len(c.packages))
	for name := range c.packages {
		names = append(names, name)
	}
	sort.Strings(names)

	packages := make([]*Package, len(names))
	for i, name := range names {
		packages[i] = c.packages[name]
	}
	return packages
}
