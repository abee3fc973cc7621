package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <archive> <path>",
		Short: "Write one decoded entry to stdout",
		Args:  cobra.ExactArgs(2),
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

			e, ok := archive.Entry(args[1])
			if ok && !e.Encrypted() && !e.Compressed() {
				f, err := archive.StreamFile(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				_, err = io.Copy(cmd.OutOrStdout(), f)
				return err
			}

			data, err := archive.ReadFile(args[1], key)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
