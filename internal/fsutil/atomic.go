// Package fsutil writes files atomically inside an os.Root.
package fsutil

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrExists is returned by WriteFile when the target exists and
// overwriting was not requested.
var ErrExists = fs.ErrExist

// WriteFile writes data to name inside root through a temp file in the
// same directory, renamed into place once fully written. Parent
// directories are created as needed. name is slash-separated and must be
// a valid fs path.
func WriteFile(root *os.Root, name string, data []byte, perm fs.FileMode, overwrite bool) error {
	if !fs.ValidPath(name) || name == "." {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrInvalid}
	}
	rel := filepath.FromSlash(name)

	if !overwrite {
		if _, err := root.Lstat(rel); err == nil {
			return &fs.PathError{Op: "write", Path: name, Err: ErrExists}
		}
	}
	if dir := filepath.Dir(rel); dir != "." {
		if err := root.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	tmp, tmpRel, err := createTemp(root, filepath.Dir(rel), ".brk-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()          //nolint:errcheck // write error takes precedence
		_ = root.Remove(tmpRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = root.Remove(tmpRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}
	if perm != 0 {
		if err := root.Chmod(tmpRel, perm); err != nil {
			_ = root.Remove(tmpRel) //nolint:errcheck // best-effort cleanup
			return fmt.Errorf("chmod: %w", err)
		}
	}
	if err := root.Rename(tmpRel, rel); err != nil {
		_ = root.Remove(tmpRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", name, err)
	}
	return nil
}

func createTemp(root *os.Root, dir, prefix string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		rel := filepath.Join(dir, prefix+name)
		f, err := root.OpenFile(rel, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return f, rel, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
