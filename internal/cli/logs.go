package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/five82/tunesphere/internal/config"
	"github.com/five82/tunesphere/internal/logging"
	"github.com/five82/tunesphere/internal/logtail"
)

func newLogsCommand(e *env) *cobra.Command {
	var (
		lines int
		level string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the client log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			minLevel, err := logging.ParseLevel(level)
			if err != nil {
				return err
			}
			cfg, err := config.Load(e.opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			entries, err := logtail.ReadEntries(cfg.LogPath, lines, minLevel)
			if errors.Is(err, fs.ErrNotExist) {
				return e.done("No log file at %s.", cfg.LogPath)
			}
			if err != nil {
				return fmt.Errorf("read log: %w", err)
			}
			if e.asJSON {
				return e.printJSON(nonNil(entries))
			}
			for _, entry := range entries {
				fmt.Fprintln(e.out, entry.Format())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to read (0 for all)")
	cmd.Flags().StringVar(&level, "level", "debug", "minimum level to show")
	return cmd
}
