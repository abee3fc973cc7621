//go:build !unix

package platform

import (
	"errors"
	"io/fs"
	"os"
)

// ErrSymlink is returned when a resource path turns out to be a symbolic link.
var ErrSymlink = errors.New("symbolic links are not packed")

// OpenNoFollow opens name inside root for reading without following a
// trailing symlink. It returns ErrSymlink if name is a link.
func OpenNoFollow(root *os.Root, name string) (*os.File, error) {
	info, err := root.Lstat(name)
	if err != nil {
		return nil, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil, ErrSymlink
	}
	return root.Open(name)
}
