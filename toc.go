package lotus

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/xerrors"
)

const (
	// tocMagic and archiveVersion make up the 8-byte header of every .toc
	// file.
	tocMagic       = 0x1867C64E
	archiveVersion = 20

	tocHeaderLen = 8
	tocEntryLen  = 96
)

// rawTocEntry is the on-disk layout of a single TOC record, little-endian.
// Same as binary.Size(rawTocEntry{}) == tocEntryLen.
type rawTocEntry struct {
	CacheOffset    int64
	Timestamp      int64
	CompLen        int32
	Len            int32
	Reserved       int32
	ParentDirIndex int32
	Name           [64]byte
}

// tocTree is a fully loaded TOC: the rooted node hierarchy plus flat
// load-order lists of files and directories. The load-order directory list
// is what entry ParentDirIndex values refer to, so parents resolve in a
// single forward pass.
type tocTree struct {
	directories []*Node
	files       []*Node
}

func loadToc(tocPath string) (*tocTree, error) {
	f, err := os.Open(tocPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{What: fmt.Sprintf("toc file %s", tocPath)}
		}
		return nil, xerrors.Errorf("opening toc: %w", err)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, xerrors.Errorf("reading toc: %w", err)
	}
	if len(buf) < tocHeaderLen {
		return nil, &FormatError{Msg: fmt.Sprintf("toc %s: truncated header (%d bytes)", tocPath, len(buf))}
	}
	if got, want := binary.LittleEndian.Uint32(buf[0:4]), uint32(tocMagic); got != want {
		return nil, &FormatError{Msg: fmt.Sprintf("toc %s: invalid magic: got %#x, want %#x", tocPath, got, want)}
	}
	if got, want := binary.LittleEndian.Uint32(buf[4:8]), uint32(archiveVersion); got != want {
		return nil, &FormatError{Msg: fmt.Sprintf("toc %s: unsupported archive version %d, want %d", tocPath, got, want)}
	}
	if (len(buf)-tocHeaderLen)%tocEntryLen != 0 {
		return nil, &FormatError{Msg: fmt.Sprintf("toc %s: %d entry bytes not a multiple of %d", tocPath, len(buf)-tocHeaderLen, tocEntryLen)}
	}

	entryCount := (len(buf) - tocHeaderLen) / tocEntryLen
	entries := make([]rawTocEntry, entryCount)
	if err := binary.Read(bytes.NewReader(buf[tocHeaderLen:]), binary.LittleEndian, entries); err != nil {
		return nil, xerrors.Errorf("decoding toc entries: %w", err)
	}

	t := &tocTree{
		directories: make([]*Node, 0, entryCount+1),
		files:       make([]*Node, 0, entryCount),
	}
	t.directories = append(t.directories, newDirectory("", nil))

	for i := range entries {
		entry := &entries[i]

		// A zero timestamp marks an entry superseded by a later one with
		// the same name.
		if entry.Timestamp == 0 {
			continue
		}

		name, err := entryName(entry.Name[:])
		if err != nil {
			return nil, xerrors.Errorf("toc entry %d: %w", i, err)
		}

		if entry.ParentDirIndex < 0 || int(entry.ParentDirIndex) >= len(t.directories) {
			return nil, &FormatError{Msg: fmt.Sprintf("toc entry %d (%s): parent directory index %d out of range", i, name, entry.ParentDirIndex)}
		}
		parent := t.directories[entry.ParentDirIndex]

		// Directories are marked with a cache offset of -1; the sentinel
		// never reaches a file node.
		if entry.CacheOffset == -1 {
			dir := newDirectory(name, parent)
			parent.append(dir)
			t.directories = append(t.directories, dir)
		} else {
			file := newFile(name, parent, entry.CacheOffset, entry.Timestamp, entry.CompLen, entry.Len)
			parent.append(file)
			t.files = append(t.files, file)
		}
	}

	return t, nil
}

// entryName decodes the null-padded 64-byte name field.
func entryName(raw []byte) (string, error) {
	end := bytes.IndexByte(raw, 0)
	if end == -1 {
		end = len(raw)
	}
	name := raw[:end]
	if !utf8.Valid(name) {
		return "", &FormatError{Msg: fmt.Sprintf("entry name %q is not valid UTF-8", name)}
	}
	return string(name), nil
}

func (t *tocTree) root() *Node { return t.directories[0] }

// findNode resolves an absolute path. "." components are skipped and ".."
// ascends; ascending past the root is an error.
func (t *tocTree) findNode(path string) (*Node, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, &PathError{Path: path, Msg: "path must be absolute"}
	}

	cur := t.root()
	for _, component := range strings.Split(path[1:], "/") {
		switch component {
		case "", ".":
			continue
		case "..":
			if cur.Parent() == nil {
				return nil, &PathError{Path: path, Msg: "path escapes the archive root"}
			}
			cur = cur.Parent()
		default:
			child := cur.Child(component)
			if child == nil {
				return nil, &NotFoundError{What: fmt.Sprintf("entry %s", path)}
			}
			cur = child
		}
	}
	return cur, nil
}

func (t *tocTree) findKind(path string, kind NodeKind) (*Node, error) {
	node, err := t.findNode(path)
	if err != nil {
		return nil, err
	}
	if node.Kind() != kind {
		return nil, &NotFoundError{What: fmt.Sprintf("%s %s", kind, path)}
	}
	return node, nil
}

// print writes the absolute path of every node below dir, one per line,
// depth first.
func (t *tocTree) print(w io.Writer, dir *Node) {
	for _, child := range dir.Children() {
		fmt.Fprintln(w, child.Path())
		if child.Kind() == Directory {
			t.print(w, child)
		}
	}
}
