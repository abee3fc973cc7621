package brk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/brk/internal/codec"
	"github.com/meigma/brk/internal/index"
	"github.com/meigma/brk/internal/platform"
	"github.com/meigma/brk/internal/seal"
)

// PackStats summarizes a finished pack.
type PackStats struct {
	// Files is the number of entries written.
	Files int

	// Encrypted is the number of encrypted entries.
	Encrypted int

	// Compressed is the number of entries stored as zstd frames.
	Compressed int

	// BytesIn is the total size of the source files.
	BytesIn uint64

	// BytesOut is the total size of the archive, header and index included.
	BytesOut uint64

	// IndexOffset is where the index begins.
	IndexOffset uint64
}

// Pack builds an archive at output from the configuration file in
// projectRoot and every regular file under resDir.
//
// The archive is written to a temporary file in the same directory and
// renamed over output only on success, so a failed pack never leaves a
// partial archive behind. key must be KeySize bytes.
//
// The context is checked between files.
func Pack(ctx context.Context, output, resDir, projectRoot string, key []byte, opts ...PackOption) (PackStats, error) {
	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return PackStats{}, fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".pack-*.brk")
	if err != nil {
		return PackStats{}, fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()

	stats, err := Write(ctx, tmp, resDir, projectRoot, key, opts...)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return PackStats{}, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return PackStats{}, fmt.Errorf("close temp archive: %w", err)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		os.Remove(tmpPath)
		return PackStats{}, fmt.Errorf("rename archive: %w", err)
	}
	return stats, nil
}

// Write packs an archive into w, starting at w's current position.
// Offsets in the archive are relative to that position. On return w is
// positioned at the end of the archive.
//
// See Pack for the meaning of the other arguments.
func Write(ctx context.Context, w io.WriteSeeker, resDir, projectRoot string, key []byte, opts ...PackOption) (PackStats, error) {
	cfg := newPackConfig(opts)
	sealer, err := seal.New(key)
	if err != nil {
		return PackStats{}, err
	}

	p := &packer{cfg: cfg, sealer: sealer, logger: cfg.logger}

	proj, err := os.OpenRoot(projectRoot)
	if err != nil {
		return PackStats{}, fmt.Errorf("open project root: %w", err)
	}
	defer proj.Close()

	res, err := os.OpenRoot(resDir)
	if err != nil {
		return PackStats{}, fmt.Errorf("open resource directory: %w", err)
	}
	defer res.Close()

	files, err := p.enumerate(ctx, proj, res)
	if err != nil {
		return PackStats{}, err
	}

	if cfg.compression != CompressionNone {
		enc, encErr := codec.NewEncoder(cfg.level, cfg.concurrency)
		if encErr != nil {
			return PackStats{}, encErr
		}
		defer enc.Close()
		p.enc = enc
	}

	return p.write(ctx, w, files)
}

// packer holds state for one pack run.
type packer struct {
	cfg    packConfig
	sealer *seal.Sealer
	enc    *codec.Encoder
	logger *slog.Logger
}

// sourceFile is one file scheduled for packing.
type sourceFile struct {
	virtual string
	root    *os.Root
	fsPath  string
	encrypt bool
}

// encoded is the stored form of one sourceFile.
type encoded struct {
	entry Entry
	blob  []byte
}

// log returns the logger, falling back to a discard logger if nil.
func (p *packer) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// reportProgress sends a progress event if a callback is configured.
func (p *packer) reportProgress(stage ProgressStage, path string, bytesDone uint64, filesDone, filesTotal int) {
	if p.cfg.progress == nil {
		return
	}
	p.cfg.progress(ProgressEvent{
		Stage:      stage,
		Path:       path,
		BytesDone:  bytesDone,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

// enumerate lists the configuration file followed by every packable
// resource in walk order.
func (p *packer) enumerate(ctx context.Context, proj, res *os.Root) ([]sourceFile, error) {
	p.reportProgress(StageEnumerating, "", 0, 0, 0)

	maxFiles := p.cfg.maxFiles
	if maxFiles == 0 {
		maxFiles = DefaultMaxFiles
	}

	configName := filepath.Base(p.cfg.configFile)
	info, err := proj.Stat(p.cfg.configFile)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("config file %s: not a regular file", p.cfg.configFile)
	}

	files := []sourceFile{{
		virtual: filepath.ToSlash(configName),
		root:    proj,
		fsPath:  p.cfg.configFile,
		encrypt: true,
	}}
	seen := map[string]struct{}{files[0].virtual: {}}

	err = fs.WalkDir(res.FS(), ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			if !d.IsDir() {
				p.log().Debug("skipped non-regular file", "path", name)
			}
			return nil
		}
		if p.cfg.skipped(name) {
			p.log().Debug("skipped by extension", "path", name)
			return nil
		}

		virtual := path.Join(p.cfg.prefix, name)
		if len(virtual) > index.MaxPathLen {
			return fmt.Errorf("%w: %s", ErrPathTooLong, virtual)
		}
		if _, dup := seen[virtual]; dup {
			return fmt.Errorf("duplicate virtual path %q", virtual)
		}
		if maxFiles > 0 && len(files) >= maxFiles {
			return ErrTooManyFiles
		}
		seen[virtual] = struct{}{}
		files = append(files, sourceFile{
			virtual: virtual,
			root:    res,
			fsPath:  filepath.FromSlash(name),
			encrypt: p.cfg.encrypted(name),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) > math.MaxUint32 {
		return nil, ErrTooManyFiles
	}

	p.log().Debug("enumerated files", "file_count", len(files))
	return files, nil
}

// write emits the header, the blobs in enumeration order, the index and
// finally the completed header.
func (p *packer) write(ctx context.Context, w io.WriteSeeker, files []sourceFile) (PackStats, error) {
	base, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return PackStats{}, fmt.Errorf("locate archive start: %w", err)
	}

	bw := bufio.NewWriterSize(w, 1<<20)
	cw := &countingWriter{w: bw}
	if err := index.WriteHeader(cw, Header{Version: FormatVersion}); err != nil {
		return PackStats{}, fmt.Errorf("write header: %w", err)
	}

	var stats PackStats
	entries := make([]Entry, 0, len(files))
	batchSize := p.cfg.concurrency * 4

	for start := 0; start < len(files); start += batchSize {
		batch := files[start:min(start+batchSize, len(files))]
		out := make([]encoded, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.concurrency)
		for i := range batch {
			g.Go(func() error {
				enc, err := p.encode(gctx, batch[i])
				out[i] = enc
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return PackStats{}, err
		}

		for i := range out {
			e := out[i].entry
			e.Offset = cw.n
			if _, err := cw.Write(out[i].blob); err != nil {
				return PackStats{}, fmt.Errorf("write %s: %w", e.Path, err)
			}
			entries = append(entries, e)

			stats.Files++
			stats.BytesIn += e.OriginalSize
			if e.Encrypted() {
				stats.Encrypted++
			}
			if e.Compressed() {
				stats.Compressed++
			}
			p.reportProgress(StageEncoding, e.Path, cw.n, len(entries), len(files))
		}
	}

	p.reportProgress(StageWritingIndex, "", cw.n, len(entries), len(files))
	indexOffset := cw.n
	for i := range entries {
		if err := index.WriteEntry(cw, &entries[i]); err != nil {
			return PackStats{}, fmt.Errorf("write index: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return PackStats{}, fmt.Errorf("write index: %w", err)
	}
	end := cw.n

	if _, err := w.Seek(base, io.SeekStart); err != nil {
		return PackStats{}, fmt.Errorf("rewind to header: %w", err)
	}
	h := Header{
		Version:     FormatVersion,
		FileCount:   uint32(len(entries)), //nolint:gosec // bounded by enumerate
		IndexOffset: indexOffset,
	}
	if err := index.WriteHeader(w, h); err != nil {
		return PackStats{}, fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Seek(base+int64(end), io.SeekStart); err != nil { //nolint:gosec // archive size fits int64
		return PackStats{}, fmt.Errorf("seek to archive end: %w", err)
	}

	stats.BytesOut = end
	stats.IndexOffset = indexOffset
	p.log().Info("archive packed",
		"file_count", stats.Files,
		"encrypted", stats.Encrypted,
		"compressed", stats.Compressed,
		"bytes_in", stats.BytesIn,
		"bytes_out", stats.BytesOut)
	return stats, nil
}

// encode reads one file and produces its stored blob: compressed first
// when that makes it smaller, then encrypted.
func (p *packer) encode(ctx context.Context, src sourceFile) (encoded, error) {
	if err := ctx.Err(); err != nil {
		return encoded{}, err
	}

	data, info, err := readSource(src)
	if err != nil {
		return encoded{}, fmt.Errorf("read %s: %w", src.virtual, err)
	}

	entry := Entry{
		Path:         src.virtual,
		OriginalSize: uint64(len(data)),
	}
	blob := data

	if p.enc != nil && len(data) > 0 && !p.cfg.skipCompress(src.virtual, info) {
		if c := p.enc.Compress(data); len(c) < len(data) {
			blob = c
			entry.Flags |= FlagCompressed
		}
	}

	if src.encrypt {
		ct, nonce, tag, err := p.sealer.Seal(blob)
		if err != nil {
			return encoded{}, fmt.Errorf("encrypt %s: %w", src.virtual, err)
		}
		blob = ct
		entry.Flags |= FlagEncrypted
		entry.Nonce = nonce
		entry.Tag = tag
	}

	entry.Size = uint64(len(blob))
	p.log().Debug("encoded file",
		"path", entry.Path,
		"original_size", entry.OriginalSize,
		"stored_size", entry.Size,
		"compressed", entry.Compressed(),
		"encrypted", entry.Encrypted())
	return encoded{entry: entry, blob: blob}, nil
}

// readSource reads the whole file without following a trailing symlink.
func readSource(src sourceFile) ([]byte, fs.FileInfo, error) {
	f, err := platform.OpenNoFollow(src.root, src.fsPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil, errors.New("not a regular file")
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return data, info, nil
}

// countingWriter tracks the archive position while writing.
type countingWriter struct {
	w io.Writer
	n uint64
}

// Write implements io.Writer.
func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if n > 0 {
		//nolint:gosec // n is non-negative by io.Writer contract
		if cw.n > math.MaxInt64-uint64(n) {
			return n, ErrSizeOverflow
		}
		cw.n += uint64(n) //nolint:gosec // overflow checked above
	}
	return n, err
}
