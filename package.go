package lotus

import (
	"fmt"
	"os"
	"path/filepath"
)

// PackageType selects a member of an H/F/B cache-pair trio.
type PackageType int

const (
	// PackageH holds asset headers and metadata.
	PackageH PackageType = iota
	// PackageF holds compressed bulk asset data.
	PackageF
	// PackageB holds binary bulk data, typically stored uncompressed.
	PackageB
)

func (t PackageType) String() string {
	switch t {
	case PackageH:
		return "H"
	case PackageF:
		return "F"
	case PackageB:
		return "B"
	}
	return "?"
}

// ParsePackageType converts "H"/"F"/"B" (either case) to a PackageType.
func ParsePackageType(s string) (PackageType, error) {
	switch s {
	case "H", "h":
		return PackageH, nil
	case "F", "f":
		return PackageF, nil
	case "B", "b":
		return PackageB, nil
	}
	return 0, &FormatError{Msg: fmt.Sprintf("invalid package trio type %q", s)}
}

// Package groups the up-to-three cache pairs sharing a logical name:
// H.<name>, F.<name> and B.<name>. Absent trio members stay nil.
type Package struct {
	directory        string
	name             string
	postEnsmallening bool
	pairs            [3]*CachePair
}

// NewPackage probes directory for the trio files of name and constructs
// the members that exist on disk.
func NewPackage(directory, name string, postEnsmallening bool) *Package {
	p := &Package{
		directory:        directory,
		name:             name,
		postEnsmallening: postEnsmallening,
	}
	for _, t := range []PackageType{PackageH, PackageF, PackageB} {
		tocPath := filepath.Join(directory, fmt.Sprintf("%s.%s.toc", t, name))
		cachePath := filepath.Join(directory, fmt.Sprintf("%s.%s.cache", t, name))
		if !exists(tocPath) && !exists(cachePath) {
			continue
		}
		p.pairs[t] = NewCachePair(tocPath, cachePath, postEnsmallening)
	}
	return p
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (p *Package) Directory() string { return p.directory }

func (p *Package) Name() string { return p.name }

func (p *Package) IsPostEnsmallening() bool { return p.postEnsmallening }

// Get returns the trio member of the given type, or nil if it is absent.
func (p *Package) Get(t PackageType) *CachePair {
	if t < PackageH || t > PackageB {
		return nil
	}
	return p.pairs[t]
}
