// Package platform holds the OS-specific file opening used by the packer.
package platform
