package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/app"
)

// withSession is withApp for commands that need a signed-in user.
func (e *env) withSession(cmd *cobra.Command, fn func(a *app.App) error) error {
	return e.withApp(cmd, func(a *app.App) error {
		if !a.Session.Snapshot().Authenticated() {
			return errNotSignedIn
		}
		return fn(a)
	})
}

func newFavoritesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite songs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.listFavorites(cmd)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List favorite songs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.listFavorites(cmd)
			},
		},
		&cobra.Command{
			Use:   "add <song-id>",
			Short: "Add a song to favorites",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withSession(cmd, func(a *app.App) error {
					ctx := cmd.Context()
					track, err := a.Client.Music.GetSongByID(ctx, args[0])
					if err != nil {
						return fmt.Errorf("look up song: %w", err)
					}
					fav, err := a.Favorites.IsFavorite(ctx, track)
					if err != nil {
						return fmt.Errorf("favorites: %w", err)
					}
					if fav {
						return e.done("%s is already a favorite.", dash(track.Title))
					}
					if _, err := a.Favorites.Toggle(ctx, track); err != nil {
						return fmt.Errorf("add favorite: %w", err)
					}
					return e.done("Added %s to favorites.", dash(track.Title))
				})
			},
		},
		&cobra.Command{
			Use:   "remove <song-id>",
			Short: "Remove a song from favorites",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withSession(cmd, func(a *app.App) error {
					ctx := cmd.Context()
					track := api.Track{ID: api.ID(args[0])}
					fav, err := a.Favorites.IsFavorite(ctx, track)
					if err != nil {
						return fmt.Errorf("favorites: %w", err)
					}
					if !fav {
						return e.done("%s is not a favorite.", args[0])
					}
					if _, err := a.Favorites.Toggle(ctx, track); err != nil {
						return fmt.Errorf("remove favorite: %w", err)
					}
					return e.done("Removed %s from favorites.", args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "toggle <song-id>",
			Short: "Add or remove a song",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withSession(cmd, func(a *app.App) error {
					ctx := cmd.Context()
					track, err := a.Client.Music.GetSongByID(ctx, args[0])
					if err != nil {
						return fmt.Errorf("look up song: %w", err)
					}
					added, err := a.Favorites.Toggle(ctx, track)
					if err != nil {
						return fmt.Errorf("toggle favorite: %w", err)
					}
					if added {
						return e.done("Added %s to favorites.", dash(track.Title))
					}
					return e.done("Removed %s from favorites.", dash(track.Title))
				})
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Replace id-only favorites with full song records",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.withSession(cmd, func(a *app.App) error {
					n, err := a.Favorites.Migrate(cmd.Context())
					if err != nil {
						return fmt.Errorf("migrate favorites: %w", err)
					}
					return e.done("Resolved %d favorites.", n)
				})
			},
		},
	)
	return cmd
}

func (e *env) listFavorites(cmd *cobra.Command) error {
	return e.withSession(cmd, func(a *app.App) error {
		tracks, err := a.Favorites.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("favorites: %w", err)
		}
		return e.printTracks(tracks)
	})
}

func newRecentCommand(e *env) *cobra.Command {
	var clearHistory bool
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently played songs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(a *app.App) error {
				if clearHistory {
					if err := a.Recent.Clear(cmd.Context()); err != nil {
						return fmt.Errorf("clear history: %w", err)
					}
					return e.done("Cleared recently played.")
				}
				tracks, err := a.Recent.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("recently played: %w", err)
				}
				return e.printTracks(tracks)
			})
		},
	}
	cmd.Flags().BoolVar(&clearHistory, "clear", false, "clear the history instead of listing it")
	return cmd
}
