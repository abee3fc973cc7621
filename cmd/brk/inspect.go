package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/opencontainers/go-digest"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/meigma/brk"
	"github.com/meigma/brk/remote"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Show archive header, entry counts and digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			archive, err := a.openArchive(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer archive.Close()

			dgst, size, err := a.archiveDigest(cmd.Context(), path)
			if err != nil {
				return err
			}

			entries := lo.Map(archive.ListFiles(), func(name string, _ int) brk.Entry {
				e, _ := archive.Entry(name)
				return e
			})
			encrypted := lo.CountBy(entries, func(e brk.Entry) bool { return e.Encrypted() })
			compressed := lo.CountBy(entries, func(e brk.Entry) bool { return e.Compressed() })
			stored := lo.Reduce(entries, func(sum uint64, e brk.Entry, _ int) uint64 { return sum + e.Size }, 0)
			original := lo.Reduce(entries, func(sum uint64, e brk.Entry, _ int) uint64 { return sum + e.OriginalSize }, 0)

			h := archive.Header()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Path:\t%s\n", path)
			fmt.Fprintf(tw, "Digest:\t%s\n", dgst)
			fmt.Fprintf(tw, "Size:\t%d\n", size)
			fmt.Fprintf(tw, "Version:\t%d\n", h.Version)
			fmt.Fprintf(tw, "Files:\t%d\n", h.FileCount)
			fmt.Fprintf(tw, "Index offset:\t%d\n", h.IndexOffset)
			fmt.Fprintf(tw, "Encrypted:\t%d\n", encrypted)
			fmt.Fprintf(tw, "Compressed:\t%d\n", compressed)
			fmt.Fprintf(tw, "Stored bytes:\t%d\n", stored)
			fmt.Fprintf(tw, "Original bytes:\t%d\n", original)
			return tw.Flush()
		},
	}
}

// archiveDigest returns the sha256 digest and size of the archive at loc.
func (a *app) archiveDigest(ctx context.Context, loc string) (digest.Digest, int64, error) {
	if !isRemote(loc) {
		return fileDigest(loc)
	}
	src, err := remote.NewSource(ctx, loc, remote.WithLogger(a.logger))
	if err != nil {
		return "", 0, err
	}
	dgst, err := digest.SHA256.FromReader(io.NewSectionReader(src, 0, src.Size()))
	if err != nil {
		return "", 0, fmt.Errorf("digest %s: %w", loc, err)
	}
	return dgst, src.Size(), nil
}

// fileDigest returns the sha256 digest and size of the file at path.
func fileDigest(path string) (digest.Digest, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}
	dgst, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", 0, fmt.Errorf("digest %s: %w", path, err)
	}
	return dgst, info.Size(), nil
}
