// Package testutil provides helpers for building project trees and
// archive bytes in tests.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// Key returns a fixed 32-byte test key.
func Key() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

// OtherKey returns a second fixed 32-byte key that differs from Key.
func OtherKey() []byte {
	key := Key()
	key[0] ^= 0xff
	return key
}

// WriteFiles writes files under dir, creating parent directories.
// Keys are slash-separated paths relative to dir.
func WriteFiles(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
}

// Project is a temporary project tree with a configuration file and a
// resource directory.
type Project struct {
	Root   string
	ResDir string
}

// NewProject creates a project whose project.toml holds config and whose
// res directory holds resources.
func NewProject(tb testing.TB, config []byte, resources map[string][]byte) Project {
	tb.Helper()
	root := tb.TempDir()
	p := Project{Root: root, ResDir: filepath.Join(root, "res")}
	if err := os.MkdirAll(p.ResDir, 0o755); err != nil {
		tb.Fatalf("mkdir res: %v", err)
	}
	WriteFiles(tb, root, map[string][]byte{"project.toml": config})
	WriteFiles(tb, p.ResDir, resources)
	return p
}

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data  []byte
	reads atomic.Int64
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	m.reads.Add(1)
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// Bytes returns the backing slice for tests that need to mutate data.
func (m *MockByteSource) Bytes() []byte {
	return m.data
}

// Reads returns how many ReadAt calls were made.
func (m *MockByteSource) Reads() int64 {
	return m.reads.Load()
}
