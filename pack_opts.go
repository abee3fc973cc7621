package brk

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	// DefaultMaxFiles is the default limit used when no PackWithMaxFiles option is set.
	DefaultMaxFiles = 200_000

	// DefaultConfigFile is the project configuration file packed at the archive root.
	DefaultConfigFile = "project.toml"

	// DefaultResourcePrefix is prepended to the virtual path of every resource.
	DefaultResourcePrefix = "res/"
)

// DefaultEncoderLevel matches zstd level 12.
var DefaultEncoderLevel = zstd.EncoderLevelFromZstd(12)

// DefaultSkipExtensions returns the extensions that are never packed:
// source code and nested archives.
func DefaultSkipExtensions() []string {
	return []string{".pup", ".rs", ".cs", ".ts", ".brk"}
}

// DefaultEncryptExtensions returns the extensions encrypted by default:
// scenes, configuration and data formats, and native binaries.
func DefaultEncryptExtensions() []string {
	return []string{
		".scn", ".fur",
		".toml", ".json", ".xml", ".yaml", ".yml",
		".dat", ".bin",
		".exe", ".dll", ".so", ".dylib",
	}
}

// SkipCompressionFunc returns true when a file should be stored uncompressed.
// It is called once per file and should be inexpensive.
type SkipCompressionFunc func(path string, info fs.FileInfo) bool

// DefaultSkipCompression returns a SkipCompressionFunc that skips files
// smaller than minSize and media or archive formats that are already compressed.
func DefaultSkipCompression(minSize int64) SkipCompressionFunc {
	return func(path string, info fs.FileInfo) bool {
		if info != nil && minSize > 0 && info.Size() < minSize {
			return true
		}
		_, ok := precompressedExts[strings.ToLower(filepath.Ext(path))]
		return ok
	}
}

var precompressedExts = map[string]struct{}{
	".7z":    {},
	".aac":   {},
	".avif":  {},
	".br":    {},
	".bz2":   {},
	".flac":  {},
	".gif":   {},
	".gz":    {},
	".jpeg":  {},
	".jpg":   {},
	".ktx2":  {},
	".mp3":   {},
	".mp4":   {},
	".ogg":   {},
	".opus":  {},
	".png":   {},
	".webm":  {},
	".webp":  {},
	".woff2": {},
	".xz":    {},
	".zip":   {},
	".zst":   {},
}

// packConfig holds configuration for Pack and Write.
type packConfig struct {
	skipExts        map[string]struct{}
	encryptExts     map[string]struct{}
	configFile      string
	prefix          string
	compression     Compression
	level           zstd.EncoderLevel
	skipCompression []SkipCompressionFunc
	concurrency     int
	maxFiles        int
	logger          *slog.Logger
	progress        ProgressFunc
}

func newPackConfig(opts []PackOption) packConfig {
	cfg := packConfig{
		skipExts:        extSet(DefaultSkipExtensions()),
		encryptExts:     extSet(DefaultEncryptExtensions()),
		configFile:      DefaultConfigFile,
		prefix:          DefaultResourcePrefix,
		compression:     CompressionZstd,
		level:           DefaultEncoderLevel,
		skipCompression: []SkipCompressionFunc{DefaultSkipCompression(0)},
		concurrency:     1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c *packConfig) skipped(path string) bool {
	_, ok := c.skipExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (c *packConfig) encrypted(path string) bool {
	_, ok := c.encryptExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (c *packConfig) skipCompress(path string, info fs.FileInfo) bool {
	for _, fn := range c.skipCompression {
		if fn != nil && fn(path, info) {
			return true
		}
	}
	return false
}

func extSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

// PackOption configures Pack and Write.
type PackOption func(*packConfig)

// PackWithSkipExtensions replaces the set of extensions that are never packed.
// Extensions are matched case-insensitively; the leading dot is optional.
func PackWithSkipExtensions(exts ...string) PackOption {
	return func(c *packConfig) {
		c.skipExts = extSet(exts)
	}
}

// PackWithEncryptExtensions replaces the set of extensions that are encrypted.
// The configuration file is encrypted regardless.
func PackWithEncryptExtensions(exts ...string) PackOption {
	return func(c *packConfig) {
		c.encryptExts = extSet(exts)
	}
}

// PackWithConfigFile sets the name of the project configuration file
// looked up in the project root. It is stored under its bare name.
func PackWithConfigFile(name string) PackOption {
	return func(c *packConfig) {
		c.configFile = name
	}
}

// PackWithResourcePrefix sets the prefix of resource virtual paths.
func PackWithResourcePrefix(prefix string) PackOption {
	return func(c *packConfig) {
		c.prefix = prefix
	}
}

// PackWithCompression sets the compression algorithm to use.
// Use CompressionNone to store files uncompressed, CompressionZstd for zstd.
func PackWithCompression(comp Compression) PackOption {
	return func(c *packConfig) {
		c.compression = comp
	}
}

// PackWithEncoderLevel sets the zstd encoder level (default: DefaultEncoderLevel).
func PackWithEncoderLevel(level zstd.EncoderLevel) PackOption {
	return func(c *packConfig) {
		c.level = level
	}
}

// PackWithSkipCompression adds predicates that decide to store a file uncompressed.
// If any predicate returns true, compression is skipped for that file.
// These checks are on the hot path, so keep them cheap.
func PackWithSkipCompression(fns ...SkipCompressionFunc) PackOption {
	return func(c *packConfig) {
		c.skipCompression = append(c.skipCompression, fns...)
	}
}

// PackWithConcurrency sets how many files are compressed and encrypted at once.
// Values < 1 are treated as 1. Output order does not depend on it.
func PackWithConcurrency(n int) PackOption {
	return func(c *packConfig) {
		c.concurrency = max(n, 1)
	}
}

// PackWithMaxFiles limits the number of files included in the archive.
// Zero uses DefaultMaxFiles. Negative means no limit.
func PackWithMaxFiles(n int) PackOption {
	return func(c *packConfig) {
		c.maxFiles = n
	}
}

// PackWithLogger sets the logger for pack operations.
// If not set, logging is disabled.
func PackWithLogger(logger *slog.Logger) PackOption {
	return func(c *packConfig) {
		c.logger = logger
	}
}

// PackWithProgress sets a callback that receives progress updates.
func PackWithProgress(fn ProgressFunc) PackOption {
	return func(c *packConfig) {
		c.progress = fn
	}
}
