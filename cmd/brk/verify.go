package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <archive>",
		Short: "Decode every entry and report failures",
		Long: `Verify reads every entry, authenticating encrypted entries and checking
decoded sizes. It exits non-zero if any entry fails.`,
		Args: cobra.ExactArgs(1),
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

			names := archive.ListFiles()
			failed := 0
			for _, name := range names {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				if _, err := archive.ReadFile(name, key); err != nil {
					failed++
					a.logger.Error("entry failed verification", "path", name, "error", err)
					continue
				}
				a.logger.Debug("entry ok", "path", name)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d entries failed verification", failed, len(names))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d entries ok\n", len(names))
			return nil
		},
	}
}
