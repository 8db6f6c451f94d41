package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/tunesphere/internal/config"
)

func newConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if e.opts.ConfigPath != "" {
				cfg.Path = e.opts.ConfigPath
			}
			if e.opts.APIURL != "" {
				cfg.APIURL = e.opts.APIURL
			}
			if _, err := os.Stat(cfg.Path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", cfg.Path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat config: %w", err)
			}
			if err := config.Save(cfg.Path, cfg); err != nil {
				return err
			}
			return e.done("Wrote %s.", cfg.Path)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(e.opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if e.opts.APIURL != "" {
				cfg.APIURL = e.opts.APIURL
			}
			text, err := cfg.Encode()
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "# %s\n%s", cfg.Path, text)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
