// Command brk packs project resources into BRK archives and inspects them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/meigma/brk"
	"github.com/meigma/brk/internal/config"
	"github.com/meigma/brk/remote"
)

// app carries state shared by subcommands for one invocation.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "brk",
		Short: "Pack and inspect BRK resource archives",
		Long: `brk bundles a project's configuration file and resource tree into a single
BRK archive, compressing entries with zstd and encrypting data files with
AES-256-GCM. It can also list, read, extract and verify existing archives.

Settings are read from brk.yaml, BRK_* environment variables and flags.
The 32-byte key is given as 64 hex characters, usually through BRK_KEY.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg

			var handler slog.Handler
			if cfg.LogFormat == "json" {
				handler = slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()})
			} else {
				handler = tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{Level: cfg.SlogLevel()})
			}
			a.logger = slog.New(handler)
			a.logger.Debug("configuration", "config", cfg)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is brk.yaml in pwd)")
	root.PersistentFlags().String("key", "", "hex-encoded 32-byte key (prefer BRK_KEY)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "log format (text, json)")

	root.AddCommand(
		newPackCmd(a),
		newLsCmd(a),
		newCatCmd(a),
		newExtractCmd(a),
		newInspectCmd(a),
		newVerifyCmd(a),
	)
	return root
}

// key returns the configured key, or nil when none is set.
func (a *app) key() ([]byte, error) {
	return a.cfg.ParseKey()
}

// isRemote reports whether loc is an http or https URL.
func isRemote(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// openArchive memory-maps the archive at loc, or reads it with range
// requests when loc is a URL.
func (a *app) openArchive(ctx context.Context, loc string) (*brk.Archive, error) {
	var (
		archive *brk.Archive
		err     error
	)
	if isRemote(loc) {
		var src *remote.Source
		src, err = remote.NewSource(ctx, loc, remote.WithLogger(a.logger))
		if err == nil {
			archive, err = brk.New(src, brk.WithLogger(a.logger))
		}
	} else {
		archive, err = brk.OpenFile(loc, brk.WithLogger(a.logger))
	}
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return archive, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
