package assets

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/brk"
	"github.com/meigma/brk/internal/testutil"
)

var (
	config    = []byte("[project]\nname = \"demo\"\n")
	hero      = []byte("\x89PNG fake image bytes")
	itemsJSON = []byte(`{"sword": 10}`)
)

func newProject(t *testing.T) testutil.Project {
	t.Helper()
	return testutil.NewProject(t, config, map[string][]byte{
		"textures/hero.png": hero,
		"data/items.json":   itemsJSON,
	})
}

func newArchive(t *testing.T, p testutil.Project) *brk.Archive {
	t.Helper()
	out := filepath.Join(t.TempDir(), "game.brk")
	_, err := brk.Pack(context.Background(), out, p.ResDir, p.Root, testutil.Key())
	require.NoError(t, err)
	a, err := brk.OpenFile(out)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestResolveDisk(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	userDir := t.TempDir()
	l, err := NewDiskLoader(p.Root, "demo", WithUserDir(userDir))
	require.NoError(t, err)
	defer l.Close()

	abs := filepath.Join(t.TempDir(), "elsewhere.txt")
	tests := []struct {
		in   string
		want string
	}{
		{"res://textures/hero.png", filepath.Join(p.Root, "res", "textures", "hero.png")},
		{"project.toml", filepath.Join(p.Root, "project.toml")},
		{"user://saves/slot1.dat", filepath.Join(userDir, "saves", "slot1.dat")},
		{abs, abs},
	}
	for _, tt := range tests {
		r, err := l.Resolve(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, OnDisk, r.Location, tt.in)
		assert.Equal(t, tt.want, r.Path, tt.in)
	}
}

func TestResolveArchive(t *testing.T) {
	t.Parallel()

	userDir := t.TempDir()
	l, err := NewArchiveLoader(newArchive(t, newProject(t)), "demo", testutil.Key(), WithUserDir(userDir))
	require.NoError(t, err)
	defer l.Close()

	tests := []struct {
		in       string
		location Location
		want     string
	}{
		{"res://textures/hero.png", InArchive, "res/textures/hero.png"},
		{"project.toml", InArchive, "project.toml"},
		{"res://a/./b/../c.txt", InArchive, "res/a/c.txt"},
		{"user://saves/slot1.dat", OnDisk, filepath.Join(userDir, "saves", "slot1.dat")},
	}
	for _, tt := range tests {
		r, err := l.Resolve(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.location, r.Location, tt.in)
		assert.Equal(t, tt.want, r.Path, tt.in)
	}
}

func TestResolveInvalid(t *testing.T) {
	t.Parallel()

	l, err := NewDiskLoader(newProject(t).Root, "demo", WithUserDir(t.TempDir()))
	require.NoError(t, err)

	for _, in := range []string{"", "res://", "res://../project.toml", "user://../../etc/passwd", "../outside.txt", "user://"} {
		_, err := l.Resolve(in)
		require.ErrorIs(t, err, ErrInvalidPath, "path %q", in)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	disk, err := NewDiskLoader(p.Root, "demo")
	require.NoError(t, err)
	packed, err := NewArchiveLoader(newArchive(t, p), "demo", testutil.Key())
	require.NoError(t, err)
	defer packed.Close()

	for _, l := range []*Loader{disk, packed} {
		got, err := l.Load("res://data/items.json")
		require.NoError(t, err)
		assert.Equal(t, itemsJSON, got)

		got, err = l.Load("project.toml")
		require.NoError(t, err)
		assert.Equal(t, config, got)

		_, err = l.Load("res://missing.png")
		require.ErrorIs(t, err, os.ErrNotExist)
	}
}

func TestLoadArchiveWithoutKey(t *testing.T) {
	t.Parallel()

	l, err := NewArchiveLoader(newArchive(t, newProject(t)), "demo", nil)
	require.NoError(t, err)
	defer l.Close()

	_, err = l.Load("res://data/items.json")
	require.ErrorIs(t, err, brk.ErrMissingKey)

	got, err := l.Load("res://textures/hero.png")
	require.NoError(t, err)
	assert.Equal(t, hero, got)
}

func TestNewArchiveLoaderRejectsBadKey(t *testing.T) {
	t.Parallel()

	_, err := NewArchiveLoader(newArchive(t, newProject(t)), "demo", []byte("short"))
	require.ErrorIs(t, err, brk.ErrInvalidKey)
}

func TestNewLoaderRejectsBadName(t *testing.T) {
	t.Parallel()

	_, err := NewDiskLoader(t.TempDir(), "")
	require.ErrorIs(t, err, ErrInvalidPath)
	_, err = NewDiskLoader(t.TempDir(), "a/b")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestLoaderOutlivesCallerArchive(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	out := filepath.Join(t.TempDir(), "game.brk")
	_, err := brk.Pack(context.Background(), out, p.ResDir, p.Root, testutil.Key())
	require.NoError(t, err)
	a, err := brk.OpenFile(out)
	require.NoError(t, err)

	l, err := NewArchiveLoader(a, "demo", testutil.Key())
	require.NoError(t, err)
	require.NoError(t, a.Close())

	got, err := l.Load("res://textures/hero.png")
	require.NoError(t, err)
	assert.Equal(t, hero, got)
	require.NoError(t, l.Close())
}

func TestStream(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	disk, err := NewDiskLoader(p.Root, "demo")
	require.NoError(t, err)
	packed, err := NewArchiveLoader(newArchive(t, p), "demo", testutil.Key())
	require.NoError(t, err)
	defer packed.Close()

	for _, l := range []*Loader{disk, packed} {
		rs, err := l.Stream("res://textures/hero.png")
		require.NoError(t, err)

		_, err = rs.Seek(5, io.SeekStart)
		require.NoError(t, err)
		got, err := io.ReadAll(rs)
		require.NoError(t, err)
		assert.Equal(t, hero[5:], got)
		require.NoError(t, rs.Close())
	}

	_, err = packed.Stream("res://data/items.json")
	require.ErrorIs(t, err, brk.ErrNotStreamable)
}

func TestSave(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	userDir := t.TempDir()
	disk, err := NewDiskLoader(p.Root, "demo", WithUserDir(userDir))
	require.NoError(t, err)
	packed, err := NewArchiveLoader(newArchive(t, p), "demo", testutil.Key(), WithUserDir(userDir))
	require.NoError(t, err)
	defer packed.Close()

	require.NoError(t, disk.Save("res://levels/new.lvl", []byte("level")))
	got, err := os.ReadFile(filepath.Join(p.Root, "res", "levels", "new.lvl"))
	require.NoError(t, err)
	assert.Equal(t, []byte("level"), got)

	require.NoError(t, packed.Save("user://saves/slot1.dat", []byte("save one")))
	require.NoError(t, packed.Save("user://saves/slot1.dat", []byte("save two")))
	got, err = packed.Load("user://saves/slot1.dat")
	require.NoError(t, err)
	assert.Equal(t, []byte("save two"), got)

	err = packed.Save("res://textures/hero.png", []byte("nope"))
	require.ErrorIs(t, err, ErrReadOnly)
	err = packed.Save("project.toml", []byte("nope"))
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestDefaultUserDir(t *testing.T) {
	t.Parallel()

	l, err := NewDiskLoader(t.TempDir(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", filepath.Base(l.UserDir()))
	assert.Equal(t, "demo", l.Name())
}
