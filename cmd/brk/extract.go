package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/meigma/brk"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		prefix    string
		overwrite bool
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "extract <archive> <dest>",
		Short: "Decode archive entries into a directory",
		Long: `Extract writes every entry (or those under --prefix) to dest, keeping their
virtual paths. Existing files are skipped unless --overwrite is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.key()
			if err != nil {
				return err
			}
			archive, err := a.openArchive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer archive.Close()

			if workers <= 0 {
				workers = runtime.GOMAXPROCS(0)
			}
			n, err := archive.Extract(cmd.Context(), args[1], key,
				brk.ExtractWithPrefix(prefix),
				brk.ExtractWithOverwrite(overwrite),
				brk.ExtractWithWorkers(workers),
			)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", args[0], err)
			}
			a.logger.Info("extracted", "archive", args[0], "dest", args[1], "files", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only extract paths with this prefix")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing files")
	cmd.Flags().IntVar(&workers, "workers", 0, "entries decoded in parallel (default GOMAXPROCS)")
	return cmd
}
