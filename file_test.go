package brk

import (
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamFileReadAll(t *testing.T) {
	t.Parallel()

	a := openFixture(t)
	f, err := a.StreamFile("res/textures/hero.png")
	require.NoError(t, err)
	defer f.Close()

	want := fixtureResources()["textures/hero.png"]
	assert.Equal(t, "res/textures/hero.png", f.Name())
	assert.Equal(t, int64(len(want)), f.Size())

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	n, err := f.Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamFileSmallReads(t *testing.T) {
	t.Parallel()

	a := openFixture(t)
	f, err := a.StreamFile("res/audio/theme.ogg")
	require.NoError(t, err)
	defer f.Close()

	var got []byte
	buf := make([]byte, 7)
	for {
		n, err := f.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, fixtureResources()["audio/theme.ogg"], got)
}

func TestStreamFileEmpty(t *testing.T) {
	t.Parallel()

	a := openFixture(t)
	f, err := a.StreamFile("res/empty.txt")
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Read(make([]byte, 4))
	assert.Zero(t, n)
	require.ErrorIs(t, err, io.EOF)

	pos, err := f.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Zero(t, pos)
}

func TestStreamFileSeek(t *testing.T) {
	t.Parallel()

	a := openFixture(t)
	content := fixtureResources()["textures/hero.png"]
	size := int64(len(content))

	tests := []struct {
		name    string
		start   int64
		offset  int64
		whence  int
		want    int64
		wantErr bool
	}{
		{"start", 0, 10, io.SeekStart, 10, false},
		{"start at size", 0, size, io.SeekStart, size, false},
		{"current forward", 5, 3, io.SeekCurrent, 8, false},
		{"current back", 20, -20, io.SeekCurrent, 0, false},
		{"end", 0, 0, io.SeekEnd, size, false},
		{"end back", 0, -4, io.SeekEnd, size - 4, false},
		{"negative start", 7, -1, io.SeekStart, 7, true},
		{"past end", 7, size + 1, io.SeekStart, 7, true},
		{"end forward", 7, 1, io.SeekEnd, 7, true},
		{"current before start", 7, -8, io.SeekCurrent, 7, true},
		{"end before start", 7, -size - 1, io.SeekEnd, 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := a.StreamFile("res/textures/hero.png")
			require.NoError(t, err)
			defer f.Close()

			_, err = f.Seek(tt.start, io.SeekStart)
			require.NoError(t, err)

			pos, err := f.Seek(tt.offset, tt.whence)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrSeekOutOfBounds)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, pos)

			cur, err := f.Seek(0, io.SeekCurrent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cur, "cursor after seek")

			rest, err := io.ReadAll(f)
			require.NoError(t, err)
			assert.Equal(t, content[tt.want:], rest)
		})
	}
}

func TestStreamFileReadAt(t *testing.T) {
	t.Parallel()

	a := openFixture(t)
	f, err := a.StreamFile("res/textures/hero.png")
	require.NoError(t, err)
	defer f.Close()

	content := fixtureResources()["textures/hero.png"]

	buf := make([]byte, 4)
	n, err := f.ReadAt(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, content[4:8], buf)

	n, err = f.ReadAt(buf, int64(len(content)-2))
	assert.Equal(t, 2, n)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, content[len(content)-2:], buf[:2])

	_, err = f.ReadAt(buf, -1)
	require.ErrorIs(t, err, fs.ErrInvalid)

	pos, err := f.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos, "ReadAt does not move the cursor")
}

func TestStreamFileNotStreamable(t *testing.T) {
	t.Parallel()

	a := openFixture(t)
	for _, name := range []string{"project.toml", "res/data/items.json", "res/text/readme.txt"} {
		_, err := a.StreamFile(name)
		require.ErrorIs(t, err, ErrNotStreamable, name)
	}

	_, err := a.StreamFile("res/missing.bin")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStreamFileClose(t *testing.T) {
	t.Parallel()

	a := openFixture(t)
	f, err := a.StreamFile("res/textures/hero.png")
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = f.Read(make([]byte, 1))
	require.ErrorIs(t, err, fs.ErrClosed)
	_, err = f.Seek(0, io.SeekStart)
	require.ErrorIs(t, err, fs.ErrClosed)
}

func TestStreamFileOutlivesArchive(t *testing.T) {
	t.Parallel()

	path, _, _ := packFixture(t, newFixture(t))
	a, err := OpenFile(path)
	require.NoError(t, err)

	f, err := a.StreamFile("res/audio/theme.ogg")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, fixtureResources()["audio/theme.ogg"], got)
	require.NoError(t, f.Close())
}
