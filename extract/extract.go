// Package extract drives bulk asset extraction: it walks a package's H
// cache, classifies every entry, and writes the reconstructed audio and
// texture files to disk.
package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	lotus "github.com/sehnryr/lotus-lib"
	"github.com/sehnryr/lotus-lib/audio"
	"github.com/sehnryr/lotus-lib/texture"
)

// Options tunes an extraction run.
type Options struct {
	// Concurrency bounds the number of entries processed at once. Each
	// worker opens its own cache handles, so this is also the open-file
	// budget. Defaults to 4.
	Concurrency int

	// Audio passes Options through to the audio decoder.
	Audio audio.Options
}

// Package extracts every recognized audio and texture asset of pkg under
// outDir, mirroring the archive hierarchy. Entries that are neither are
// skipped; entries that fail to decode are logged and skipped. A
// filesystem error does not stop the other entries: Package returns the
// first such error once every entry has been processed.
func Package(pkg *lotus.Package, outDir string, opts Options) error {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	hCache := pkg.Get(lotus.PackageH)
	if hCache == nil {
		return &lotus.NotFoundError{What: fmt.Sprintf("H cache of package %s", pkg.Name())}
	}
	if err := hCache.ReadToc(); err != nil {
		return err
	}
	// Load the sibling TOCs up front so the workers only ever read them.
	for _, t := range []lotus.PackageType{lotus.PackageF, lotus.PackageB} {
		if cache := pkg.Get(t); cache != nil {
			if err := cache.ReadToc(); err != nil {
				return err
			}
		}
	}

	var eg errgroup.Group
	eg.SetLimit(opts.Concurrency)
	for _, node := range hCache.Files() {
		node := node
		eg.Go(func() error {
			return extractNode(pkg, node, outDir, opts)
		})
	}
	return eg.Wait()
}

func extractNode(pkg *lotus.Package, node *lotus.Node, outDir string, opts Options) error {
	data, name, err := decodeNode(pkg, node, opts)
	if err != nil {
		log.Warn().Err(err).Str("entry", node.Path()).Msg("skipping entry")
		return nil
	}
	if data == nil {
		return nil // not an asset we reconstruct
	}

	dir := filepath.Join(outDir, filepath.FromSlash(filepath.Dir(node.Path())))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return xerrors.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return xerrors.Errorf("writing %s: %w", path, err)
	}
	log.Debug().Str("output", path).Int("bytes", len(data)).Msg("extracted")
	return nil
}

// decodeNode classifies node and runs the matching pipeline. A nil data
// return with nil error means the entry is not a recognized asset.
func decodeNode(pkg *lotus.Package, node *lotus.Node, opts Options) ([]byte, string, error) {
	if ok, err := audio.IsAudio(pkg, node); err != nil {
		return nil, "", err
	} else if ok {
		return audio.DecodeOptions(pkg, node, opts.Audio)
	}
	if ok, err := texture.IsTexture(pkg, node); err != nil {
		return nil, "", err
	} else if ok {
		return texture.Decode(pkg, node)
	}
	return nil, "", nil
}
