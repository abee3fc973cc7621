// Package brk reads and writes BRK archives: single-file bundles of game
// resources with per-file zstd compression and AES-256-GCM encryption.
//
// An archive is a 20-byte header, the stored file blobs laid end to end,
// and an index of fixed-layout records describing each blob. Compression
// is applied before encryption; readers decrypt, then decompress.
//
// # Packing
//
// Pack a project's configuration file and resource tree:
//
//	key, err := brk.ParseKey(os.Getenv("BRK_KEY"))
//	if err != nil {
//	    return err
//	}
//	stats, err := brk.Pack(ctx, "game.brk", "./project/res", "./project", key,
//	    brk.PackWithConcurrency(runtime.GOMAXPROCS(0)),
//	)
//
// Resources are stored under "res/" and the configuration file under its
// bare name. Source code is skipped, and data formats are encrypted.
//
// # Reading
//
// Open an embedded archive or a file on disk and read entries:
//
//	//go:embed game.brk
//	var gameData []byte
//
//	archive, err := brk.OpenBytes(gameData)
//	if err != nil {
//	    return err
//	}
//	defer archive.Close()
//	cfg, err := archive.ReadFile("project.toml", key)
//
// Entries stored verbatim can be streamed with [Archive.StreamFile], which
// returns a seekable [File] reading straight from the archive bytes.
//
// For resolving res:// and user:// paths against a disk tree or an
// archive, see the assets subpackage. Archives published over HTTP can be
// opened with [New] and a source from the remote subpackage.
package brk
