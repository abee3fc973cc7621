// Package assets resolves engine resource paths against either a project
// directory on disk or a packed archive.
//
// Paths come in three forms:
//
//   - "res://textures/hero.png" names a project resource. On disk it maps
//     to <root>/res/textures/hero.png, in an archive to "res/textures/hero.png".
//   - "user://saves/slot1.dat" names per-user data. It always maps to disk,
//     under the user directory of the application.
//   - Absolute OS paths map to themselves. Any other relative path is taken
//     relative to the project root, or looked up verbatim in the archive.
//
// Archive-backed loaders are read-only; Save only writes to disk.
package assets

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/meigma/brk"
	"github.com/meigma/brk/internal/fsutil"
)

const (
	resScheme  = "res://"
	userScheme = "user://"
)

var (
	// ErrInvalidPath is returned for paths that are empty or escape their root.
	ErrInvalidPath = errors.New("assets: invalid path")

	// ErrReadOnly is returned when saving to a path inside an archive.
	ErrReadOnly = errors.New("assets: archive is read-only")
)

// Location says where a resolved path lives.
type Location uint8

const (
	// OnDisk paths are OS file paths.
	OnDisk Location = iota

	// InArchive paths are virtual paths inside the loader's archive.
	InArchive
)

// String returns the location name.
func (l Location) String() string {
	switch l {
	case OnDisk:
		return "disk"
	case InArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// Resolved is the result of resolving an engine path.
type Resolved struct {
	Location Location

	// Path is an OS path for OnDisk and a slash-separated virtual path
	// for InArchive.
	Path string
}

// Loader resolves and loads assets for one application.
// A Loader is safe for concurrent use.
type Loader struct {
	name    string
	root    string
	archive *brk.Archive
	key     []byte
	userDir string
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithUserDir sets the directory user:// paths resolve into.
// By default it is <os.UserConfigDir()>/<name>, or <os.TempDir()>/<name>
// when no config directory is available.
func WithUserDir(dir string) Option {
	return func(l *Loader) {
		l.userDir = dir
	}
}

// WithLogger sets the logger for loader operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewDiskLoader returns a loader for a project directory, as used during
// development. name is the application name used for user:// paths.
func NewDiskLoader(root, name string, opts ...Option) (*Loader, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s: not a directory", root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	return newLoader(&Loader{root: abs}, name, opts)
}

// NewArchiveLoader returns a loader reading project files from archive.
//
// The loader keeps its own clone of archive, so the caller may close its
// handle; Close releases the clone. key decrypts encrypted entries and may
// be nil when the archive has none. The key is copied.
func NewArchiveLoader(archive *brk.Archive, name string, key []byte, opts ...Option) (*Loader, error) {
	if key != nil && len(key) != brk.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", brk.ErrInvalidKey, len(key), brk.KeySize)
	}
	l := &Loader{archive: archive.Clone()}
	if key != nil {
		l.key = append([]byte(nil), key...)
	}
	loader, err := newLoader(l, name, opts)
	if err != nil {
		l.archive.Close()
		return nil, err
	}
	return loader, nil
}

func newLoader(l *Loader, name string, opts []Option) (*Loader, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: application name %q", ErrInvalidPath, name)
	}
	l.name = name
	for _, opt := range opts {
		opt(l)
	}
	if l.userDir == "" {
		l.userDir = defaultUserDir(name)
	}
	return l, nil
}

func defaultUserDir(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, name)
}

// log returns the logger, falling back to a discard logger if nil.
func (l *Loader) log() *slog.Logger {
	if l.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.logger
}

// Name returns the application name.
func (l *Loader) Name() string {
	return l.name
}

// UserDir returns the directory user:// paths resolve into.
func (l *Loader) UserDir() string {
	return l.userDir
}

// Close releases the loader's archive handle, if any.
func (l *Loader) Close() error {
	if l.archive == nil {
		return nil
	}
	return l.archive.Close()
}

// Resolve maps an engine path to a disk or archive location.
func (l *Loader) Resolve(p string) (Resolved, error) {
	if rest, ok := strings.CutPrefix(p, userScheme); ok {
		rel, err := cleanRel(rest)
		if err != nil {
			return Resolved{}, fmt.Errorf("resolve %s: %w", p, err)
		}
		return Resolved{Location: OnDisk, Path: filepath.Join(l.userDir, filepath.FromSlash(rel))}, nil
	}

	if filepath.IsAbs(p) {
		return Resolved{Location: OnDisk, Path: filepath.Clean(p)}, nil
	}

	rest, isRes := strings.CutPrefix(p, resScheme)
	rel, err := cleanRel(rest)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve %s: %w", p, err)
	}
	if isRes {
		rel = "res/" + rel
	}

	if l.archive != nil {
		return Resolved{Location: InArchive, Path: rel}, nil
	}
	return Resolved{Location: OnDisk, Path: filepath.Join(l.root, filepath.FromSlash(rel))}, nil
}

// cleanRel normalizes a slash-separated relative path and rejects paths
// that are empty or climb out of their root.
func cleanRel(p string) (string, error) {
	p = strings.ReplaceAll(p, `\`, "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", ErrInvalidPath
	}
	p = path.Clean(p)
	if p == "." || !validPath(p) {
		return "", ErrInvalidPath
	}
	return p, nil
}

func validPath(p string) bool {
	return p != ".." && !strings.HasPrefix(p, "../")
}

// Load reads the whole asset at p.
func (l *Loader) Load(p string) ([]byte, error) {
	r, err := l.Resolve(p)
	if err != nil {
		return nil, err
	}
	l.log().Debug("load asset", "path", p, "location", r.Location, "resolved", r.Path)
	if r.Location == InArchive {
		return l.archive.ReadFile(r.Path, l.key)
	}
	return os.ReadFile(r.Path)
}

// Stream opens the asset at p for seekable reading. Archive entries must
// be stored verbatim; encrypted or compressed entries fail with
// brk.ErrNotStreamable and should be read with Load.
func (l *Loader) Stream(p string) (io.ReadSeekCloser, error) {
	r, err := l.Resolve(p)
	if err != nil {
		return nil, err
	}
	l.log().Debug("stream asset", "path", p, "location", r.Location, "resolved", r.Path)
	if r.Location == InArchive {
		f, err := l.archive.StreamFile(r.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Save writes data to the asset at p, creating parent directories.
// The file is replaced atomically. Paths inside an archive fail with ErrReadOnly.
func (l *Loader) Save(p string, data []byte) error {
	r, err := l.Resolve(p)
	if err != nil {
		return err
	}
	if r.Location == InArchive {
		return fmt.Errorf("save %s: %w", p, ErrReadOnly)
	}

	dir := filepath.Dir(r.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("save %s: %w", p, err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("save %s: %w", p, err)
	}
	defer root.Close()

	if err := fsutil.WriteFile(root, filepath.Base(r.Path), data, 0, true); err != nil {
		return fmt.Errorf("save %s: %w", p, err)
	}
	l.log().Debug("saved asset", "path", p, "resolved", r.Path, "size", len(data))
	return nil
}
