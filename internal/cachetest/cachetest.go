// Package cachetest builds synthetic cache-pair fixtures on disk for
// tests of the extraction pipelines.
package cachetest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const (
	tocMagic       = 0x1867C64E
	archiveVersion = 20
)

type rawEntry struct {
	CacheOffset    int64
	Timestamp      int64
	CompLen        int32
	Len            int32
	Reserved       int32
	ParentDirIndex int32
	Name           [64]byte
}

// Entry describes one file record of a synthetic TOC. Paths are absolute;
// intermediate directories are created automatically.
type Entry struct {
	Path        string
	CacheOffset int64
	CompLen     int32
	Len         int32
}

// WriteEntries writes <trio>.<name>.toc with the given file entries and
// <trio>.<name>.cache with the given contents.
func WriteEntries(t *testing.T, dir, trio, name string, entries []Entry, cache []byte) {
	t.Helper()

	toc := &bytes.Buffer{}
	binary.Write(toc, binary.LittleEndian, uint32(tocMagic))
	binary.Write(toc, binary.LittleEndian, uint32(archiveVersion))

	writeEntry := func(e rawEntry) {
		binary.Write(toc, binary.LittleEndian, e)
	}

	dirIndex := map[string]int32{"/": 0}
	nextDir := int32(1)
	ensureDir := func(path string) int32 {
		if idx, ok := dirIndex[path]; ok {
			return idx
		}
		parent := int32(0)
		cur := "/"
		for _, component := range strings.Split(strings.Trim(path, "/"), "/") {
			if cur == "/" {
				cur += component
			} else {
				cur += "/" + component
			}
			idx, ok := dirIndex[cur]
			if !ok {
				var entryName [64]byte
				copy(entryName[:], component)
				writeEntry(rawEntry{
					CacheOffset:    -1,
					Timestamp:      1,
					ParentDirIndex: parent,
					Name:           entryName,
				})
				idx = nextDir
				dirIndex[cur] = idx
				nextDir++
			}
			parent = idx
		}
		return parent
	}

	for _, e := range entries {
		parent := ensureDir(filepath.ToSlash(filepath.Dir(e.Path)))
		var entryName [64]byte
		copy(entryName[:], filepath.Base(e.Path))
		writeEntry(rawEntry{
			CacheOffset:    e.CacheOffset,
			Timestamp:      1,
			CompLen:        e.CompLen,
			Len:            e.Len,
			ParentDirIndex: parent,
			Name:           entryName,
		})
	}

	if err := os.WriteFile(filepath.Join(dir, trio+"."+name+".toc"), toc.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, trio+"."+name+".cache"), cache, 0644); err != nil {
		t.Fatal(err)
	}
}

// WriteStored lays the given payloads out back to back as stored
// (uncompressed) entries and writes the resulting pair.
func WriteStored(t *testing.T, dir, trio, name string, files map[string][]byte) {
	t.Helper()

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var cache bytes.Buffer
	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		data := files[path]
		entries = append(entries, Entry{
			Path:        path,
			CacheOffset: int64(cache.Len()),
			CompLen:     int32(len(data)),
			Len:         int32(len(data)),
		})
		cache.Write(data)
	}
	WriteEntries(t, dir, trio, name, entries, cache.Bytes())
}
