package lotus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	"github.com/sehnryr/lotus-lib/compression"
)

// CachePair is a .toc file and its matching .cache file. The TOC tree is
// loaded lazily by ReadToc; every data read opens its own handle to the
// cache file, so a loaded CachePair is safe for concurrent use.
type CachePair struct {
	tocPath          string
	cachePath        string
	postEnsmallening bool

	mu   sync.Mutex
	tree *tocTree
}

// NewCachePair wires up a pair without touching the filesystem; call
// ReadToc before resolving paths or listing entries.
func NewCachePair(tocPath, cachePath string, postEnsmallening bool) *CachePair {
	return &CachePair{
		tocPath:          tocPath,
		cachePath:        cachePath,
		postEnsmallening: postEnsmallening,
	}
}

func (c *CachePair) TocPath() string { return c.tocPath }

func (c *CachePair) CachePath() string { return c.cachePath }

// Name returns the trio file basename shared by the pair, e.g. "H.Misc"
// for H.Misc.toc/H.Misc.cache.
func (c *CachePair) Name() string {
	return strings.TrimSuffix(filepath.Base(c.tocPath), ".toc")
}

// IsPostEnsmallening reports whether cache entries use the block-framed
// mixed Oodle/LZ4 format rather than a single LZ4 frame.
func (c *CachePair) IsPostEnsmallening() bool { return c.postEnsmallening }

// ReadToc parses the .toc file and builds the entry tree. Calling it again
// after a successful load is a no-op.
func (c *CachePair) ReadToc() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tree != nil {
		return nil
	}
	tree, err := loadToc(c.tocPath)
	if err != nil {
		return err
	}
	log.Debug().
		Str("toc", c.tocPath).
		Int("files", len(tree.files)).
		Int("directories", len(tree.directories)).
		Msg("toc loaded")
	c.tree = tree
	return nil
}

// UnreadToc drops the loaded tree. Nodes handed out before the call stay
// valid but are no longer reachable through the pair.
func (c *CachePair) UnreadToc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = nil
}

func (c *CachePair) loaded() (*tocTree, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tree == nil {
		return nil, xerrors.Errorf("toc %s not read", c.tocPath)
	}
	return c.tree, nil
}

// Root returns the tree root, or nil before ReadToc.
func (c *CachePair) Root() *Node {
	tree, err := c.loaded()
	if err != nil {
		return nil
	}
	return tree.root()
}

// Files lists all file nodes in TOC load order.
func (c *CachePair) Files() []*Node {
	tree, err := c.loaded()
	if err != nil {
		return nil
	}
	return tree.files
}

// Directories lists all directory nodes in TOC load order, root first.
func (c *CachePair) Directories() []*Node {
	tree, err := c.loaded()
	if err != nil {
		return nil
	}
	return tree.directories
}

// FindFile resolves an absolute path to a file node.
func (c *CachePair) FindFile(path string) (*Node, error) {
	tree, err := c.loaded()
	if err != nil {
		return nil, err
	}
	return tree.findKind(path, File)
}

// FindDirectory resolves an absolute path to a directory node.
func (c *CachePair) FindDirectory(path string) (*Node, error) {
	tree, err := c.loaded()
	if err != nil {
		return nil, err
	}
	return tree.findKind(path, Directory)
}

// PrintTree writes the paths of every node below the root to w.
func (c *CachePair) PrintTree(w io.Writer) error {
	tree, err := c.loaded()
	if err != nil {
		return err
	}
	tree.print(w, tree.root())
	return nil
}

// ReadRaw returns the entry's cache bytes as stored, without decompressing.
func (c *CachePair) ReadRaw(node *Node) ([]byte, error) {
	if node.Kind() != File {
		return nil, &FormatError{Msg: fmt.Sprintf("%s is a directory, not a file", node.Path())}
	}

	f, err := os.Open(c.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{What: fmt.Sprintf("cache file %s", c.cachePath)}
		}
		return nil, xerrors.Errorf("opening cache: %w", err)
	}
	defer f.Close()

	data := make([]byte, node.CompLen())
	if _, err := f.ReadAt(data, node.CacheOffset()); err != nil {
		return nil, xerrors.Errorf("reading %s from cache: %w", node.Path(), err)
	}
	return data, nil
}

// Decompress returns the entry's decompressed bytes. Stored entries
// (CompLen == Len) are returned verbatim.
func (c *CachePair) Decompress(node *Node) ([]byte, error) {
	if node.Kind() != File {
		return nil, &FormatError{Msg: fmt.Sprintf("%s is a directory, not a file", node.Path())}
	}
	if node.CompLen() == node.Len() {
		return c.ReadRaw(node)
	}

	f, err := os.Open(c.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{What: fmt.Sprintf("cache file %s", c.cachePath)}
		}
		return nil, xerrors.Errorf("opening cache: %w", err)
	}
	defer f.Close()

	log.Debug().
		Str("entry", node.Path()).
		Int64("cacheOffset", node.CacheOffset()).
		Int32("compLen", node.CompLen()).
		Int32("len", node.Len()).
		Bool("postEnsmallening", c.postEnsmallening).
		Msg("decompressing entry")

	var data []byte
	if c.postEnsmallening {
		data, err = compression.DecompressPost(f, node.CacheOffset(), int(node.CompLen()), int(node.Len()))
	} else {
		data, err = compression.DecompressPre(f, node.CacheOffset(), int(node.CompLen()), int(node.Len()))
	}
	if err != nil {
		return nil, xerrors.Errorf("decompressing %s: %w", node.Path(), err)
	}
	return data, nil
}
