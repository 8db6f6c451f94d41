package cli

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/app"
)

func newSearchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search songs across platforms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query must not be empty")
			}
			return e.withApp(cmd, func(a *app.App) error {
				tracks, err := a.Client.Music.SearchSongs(cmd.Context(), query)
				if err != nil {
					return fmt.Errorf("search: %w", err)
				}
				return e.printTracks(tracks)
			})
		},
	}
}

func newTrendingCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "trending",
		Short: "List trending songs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(a *app.App) error {
				tracks, err := a.Client.Music.GetTrendingSongs(cmd.Context())
				if err != nil {
					return fmt.Errorf("trending: %w", err)
				}
				return e.printTracks(tracks)
			})
		},
	}
}

func newPlatformCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "platform <youtube|spotify|jiosaavn>",
		Short:     "List songs from one platform",
		Args:      cobra.ExactArgs(1),
		ValidArgs: platformNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform := api.Platform(strings.ToLower(strings.TrimSpace(args[0])))
			if !platform.Valid() {
				return fmt.Errorf("unknown platform %q (want one of %s)", args[0], strings.Join(platformNames(), ", "))
			}
			return e.withApp(cmd, func(a *app.App) error {
				tracks, err := a.Client.Music.GetSongsByPlatform(cmd.Context(), platform)
				if err != nil {
					return fmt.Errorf("platform %s: %w", platform, err)
				}
				return e.printTracks(tracks)
			})
		},
	}
}

func platformNames() []string {
	return lo.Map(api.Platforms, func(p api.Platform, _ int) string { return string(p) })
}
