package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/meigma/brk"
)

func newLsCmd(a *app) *cobra.Command {
	var (
		prefix string
		long   bool
	)
	cmd := &cobra.Command{
		Use:   "ls <archive>",
		Short: "List archive entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := a.openArchive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer archive.Close()

			names := lo.Filter(archive.ListFiles(), func(name string, _ int) bool {
				return strings.HasPrefix(name, prefix)
			})

			out := cmd.OutOrStdout()
			if !long {
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			entries := lo.Map(names, func(name string, _ int) brk.Entry {
				e, _ := archive.Entry(name)
				return e
			})
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FLAGS\tSIZE\tSTORED\tOFFSET\tPATH")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", flagString(&e), e.OriginalSize, e.Size, e.Offset, e.Path)
			}
			total := lo.Reduce(entries, func(sum uint64, e brk.Entry, _ int) uint64 {
				return sum + e.OriginalSize
			}, 0)
			fmt.Fprintf(tw, "total\t%d\t\t\t%d files\n", total, len(entries))
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list paths with this prefix")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show flags and sizes")
	return cmd
}

// flagString renders entry flags as two columns: C for compressed, E for encrypted.
func flagString(e *brk.Entry) string {
	var b [2]byte
	b[0], b[1] = '-', '-'
	if e.Compressed() {
		b[0] = 'C'
	}
	if e.Encrypted() {
		b[1] = 'E'
	}
	return string(b[:])
}
