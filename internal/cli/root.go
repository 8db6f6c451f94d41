package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/five82/tunesphere/internal/app"
)

// env carries the global flags and output streams shared by every command.
type env struct {
	opts    app.Options
	verbose bool
	asJSON  bool

	out    io.Writer
	errOut io.Writer
}

// NewRootCommand builds the tunesphere command tree. Running the root
// command without a subcommand starts the TUI.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	e := &env{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "tunesphere",
		Short:         "TuneSphere is a terminal client for the TuneSphere music service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), e.appOptions())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&e.opts.ConfigPath, "config", "", "config file (default ~/.config/tunesphere/config.toml)")
	flags.StringVar(&e.opts.APIURL, "api-url", "", "override the API base URL")
	flags.StringVar(&e.opts.LogLevel, "log-level", "", "override the log level (debug, info, warn, error)")
	flags.BoolVarP(&e.verbose, "verbose", "v", false, "also write log entries to stderr")
	flags.BoolVar(&e.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		newTUICommand(e),
		newLoginCommand(e),
		newRegisterCommand(e),
		newAdminLoginCommand(e),
		newLogoutCommand(e),
		newWhoamiCommand(e),
		newProfileCommand(e),
		newSearchCommand(e),
		newTrendingCommand(e),
		newPlatformCommand(e),
		newPlaylistsCommand(e),
		newFavoritesCommand(e),
		newRecentCommand(e),
		newAdminCommand(e),
		newLogsCommand(e),
		newConfigCommand(e),
	)
	return root
}

// Execute runs the command tree against ctx.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (e *env) appOptions() app.Options {
	opts := e.opts
	if e.verbose {
		opts.Console = e.errOut
	}
	return opts
}

// withApp wires the application for a single command and closes it after.
func (e *env) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := app.New(cmd.Context(), e.appOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			fmt.Fprintf(e.errOut, "tunesphere: close: %v\n", cerr)
		}
	}()
	return fn(a)
}

func newTUICommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), e.appOptions())
		},
	}
}
