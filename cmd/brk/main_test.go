package main

import (
	"bytes"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/brk"
	"github.com/meigma/brk/internal/testutil"
)

var (
	projectConfig = []byte("[project]\nname = \"demo\"\n")
	heroPNG       = []byte("\x89PNG not really an image")
	itemsJSON     = []byte(`{"sword": 10}`)
)

// run executes the root command with an empty config file and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "brk.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}\n"), 0o644))

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func keyHex() string {
	return hex.EncodeToString(testutil.Key())
}

// packProject packs a small project and returns the archive path.
func packProject(t *testing.T) string {
	t.Helper()
	p := testutil.NewProject(t, projectConfig, map[string][]byte{
		"textures/hero.png": heroPNG,
		"data/items.json":   itemsJSON,
		"scripts/main.rs":   []byte("fn main() {}"),
	})
	out := filepath.Join(t.TempDir(), "game.brk")
	_, err := run(t, "pack", p.Root, "--key", keyHex(), "--output", out, "--no-progress", "--concurrency", "2")
	require.NoError(t, err)
	return out
}

func TestPackAndList(t *testing.T) {
	t.Parallel()

	archive := packProject(t)

	out, err := run(t, "ls", archive)
	require.NoError(t, err)
	assert.Equal(t, "project.toml\nres/data/items.json\nres/textures/hero.png\n", out)

	out, err = run(t, "ls", archive, "--prefix", "res/textures/")
	require.NoError(t, err)
	assert.Equal(t, "res/textures/hero.png\n", out)

	out, err = run(t, "ls", archive, "--long")
	require.NoError(t, err)
	assert.Contains(t, out, "FLAGS")
	assert.Contains(t, out, "3 files")
	for _, line := range strings.Split(out, "\n") {
		if strings.HasSuffix(line, "res/textures/hero.png") {
			assert.True(t, strings.HasPrefix(line, "--"), line)
		}
		if strings.HasSuffix(line, "res/data/items.json") {
			assert.Contains(t, line[:2], "E", line)
		}
	}
}

func TestPackRequiresKey(t *testing.T) {
	p := testutil.NewProject(t, projectConfig, nil)
	t.Setenv("BRK_KEY", "")

	_, err := run(t, "pack", p.Root, "--output", filepath.Join(t.TempDir(), "x.brk"), "--no-progress")
	require.ErrorIs(t, err, brk.ErrMissingKey)
}

func TestCat(t *testing.T) {
	t.Parallel()

	archive := packProject(t)

	out, err := run(t, "cat", archive, "res/data/items.json", "--key", keyHex())
	require.NoError(t, err)
	assert.Equal(t, string(itemsJSON), out)

	out, err = run(t, "cat", archive, "res/textures/hero.png")
	require.NoError(t, err)
	assert.Equal(t, string(heroPNG), out)

	_, err = run(t, "cat", archive, "res/missing.txt", "--key", keyHex())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	archive := packProject(t)
	out, err := run(t, "inspect", archive)
	require.NoError(t, err)

	assert.Contains(t, out, "sha256:")
	assert.Regexp(t, `Files:\s+3`, out)
	assert.Regexp(t, `Encrypted:\s+2`, out)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	archive := packProject(t)

	out, err := run(t, "verify", archive, "--key", keyHex())
	require.NoError(t, err)
	assert.Equal(t, "3 entries ok\n", out)

	_, err = run(t, "verify", archive, "--key", hex.EncodeToString(testutil.OtherKey()))
	require.ErrorContains(t, err, "2 of 3 entries failed")
}

func TestExtract(t *testing.T) {
	t.Parallel()

	archive := packProject(t)
	dest := t.TempDir()

	_, err := run(t, "extract", archive, dest, "--key", keyHex())
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dest, "res", "data", "items.json"))
	require.NoError(t, err)
	assert.Equal(t, itemsJSON, got)
	got, err = os.ReadFile(filepath.Join(dest, "project.toml"))
	require.NoError(t, err)
	assert.Equal(t, projectConfig, got)
}

func TestOpenMissingArchive(t *testing.T) {
	t.Parallel()

	_, err := run(t, "ls", filepath.Join(t.TempDir(), "missing.brk"))
	require.Error(t, err)
}

func TestRemoteArchive(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(packProject(t))
	require.NoError(t, err)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "game.brk", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(server.Close)

	out, err := run(t, "ls", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "project.toml\nres/data/items.json\nres/textures/hero.png\n", out)

	out, err = run(t, "cat", server.URL, "res/data/items.json", "--key", keyHex())
	require.NoError(t, err)
	assert.Equal(t, string(itemsJSON), out)

	out, err = run(t, "inspect", server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, digest.FromBytes(data).String())
}
