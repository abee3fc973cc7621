//go:build unix

package platform

import (
	"errors"
	"os"
	"syscall"
)

// ErrSymlink is returned when a resource path turns out to be a symbolic link.
var ErrSymlink = errors.New("symbolic links are not packed")

// OpenNoFollow opens name inside root for reading without following a
// trailing symlink. It returns ErrSymlink if name is a link.
func OpenNoFollow(root *os.Root, name string) (*os.File, error) {
	f, err := root.OpenFile(name, os.O_RDONLY|syscall.O_NOFOLLOW, 0)
	if errors.Is(err, syscall.ELOOP) {
		return nil, ErrSymlink
	}
	return f, err
}
