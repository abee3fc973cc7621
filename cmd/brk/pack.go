package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/meigma/brk"
	"github.com/meigma/brk/internal/progress"
)

func newPackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack <project-root>",
		Short: "Pack a project into an archive",
		Long: `Pack writes the project configuration file and every regular file under the
resource directory (default <project-root>/res) into one archive. Source files
are skipped and data formats are encrypted. The output is replaced atomically.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectRoot := args[0]
			key, err := a.key()
			if err != nil {
				return err
			}
			if key == nil {
				return fmt.Errorf("%w: set --key or BRK_KEY", brk.ErrMissingKey)
			}

			resDir := a.cfg.ResDir
			if resDir == "" {
				resDir = filepath.Join(projectRoot, "res")
			}

			bar := progress.New(cmd.ErrOrStderr(), !a.cfg.NoProgress)
			opts := append(a.cfg.PackOptions(),
				brk.PackWithLogger(a.logger),
				brk.PackWithProgress(bar.Update),
			)

			a.logger.Info("packing", "project", projectRoot, "res", resDir, "output", a.cfg.Output)
			start := time.Now()
			stats, err := brk.Pack(cmd.Context(), a.cfg.Output, resDir, projectRoot, key, opts...)
			bar.Finish()
			if err != nil {
				return fmt.Errorf("packing %s: %w", projectRoot, err)
			}

			a.logger.Info("packed",
				"output", a.cfg.Output,
				"files", stats.Files,
				"encrypted", stats.Encrypted,
				"compressed", stats.Compressed,
				"bytes_in", stats.BytesIn,
				"bytes_out", stats.BytesOut,
				"elapsed", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", "", "archive to write (default game.brk)")
	f.String("res", "", "resource directory (default <project-root>/res)")
	f.String("config-file", "", "project configuration file, relative to the project root")
	f.StringSlice("skip-ext", nil, "extensions never packed")
	f.StringSlice("encrypt-ext", nil, "extensions to encrypt")
	f.String("compression", "", "compression (zstd, none)")
	f.Int("level", 0, "zstd level 1-22")
	f.Int("concurrency", 0, "files encoded in parallel (default GOMAXPROCS)")
	f.Int("max-files", 0, "maximum number of files (negative for no limit)")
	f.Bool("no-progress", false, "disable progress bar")
	return cmd
}
