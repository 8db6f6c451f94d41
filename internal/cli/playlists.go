package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/app"
)

func newPlaylistsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "playlists",
		Aliases: []string{"playlist", "pl"},
		Short:   "Browse and manage playlists",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all playlists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.withApp(cmd, func(a *app.App) error {
					playlists, err := a.Client.Playlists.GetAllPlaylists(cmd.Context())
					if err != nil {
						return fmt.Errorf("list playlists: %w", err)
					}
					return e.printPlaylists(playlists)
				})
			},
		},
		&cobra.Command{
			Use:   "featured",
			Short: "List featured playlists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.withApp(cmd, func(a *app.App) error {
					playlists, err := a.Client.Playlists.GetFeaturedPlaylists(cmd.Context())
					if err != nil {
						return fmt.Errorf("featured playlists: %w", err)
					}
					return e.printPlaylists(playlists)
				})
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a playlist and its songs",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withApp(cmd, func(a *app.App) error {
					pl, err := a.Client.Playlists.GetPlaylistByID(cmd.Context(), args[0])
					if err != nil {
						return fmt.Errorf("show playlist: %w", err)
					}
					if e.asJSON {
						return e.printJSON(pl)
					}
					fmt.Fprintf(e.out, "%s (%s)\n", dash(pl.Name), dash(pl.Key()))
					if pl.Description != "" {
						fmt.Fprintln(e.out, pl.Description)
					}
					fmt.Fprintln(e.out)
					return e.printTracks(pl.Songs)
				})
			},
		},
		newPlaylistCreateCommand(e),
		newPlaylistUpdateCommand(e),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a playlist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withApp(cmd, func(a *app.App) error {
					if err := a.Client.Playlists.DeletePlaylist(cmd.Context(), args[0]); err != nil {
						return fmt.Errorf("delete playlist: %w", err)
					}
					return e.done("Deleted playlist %s.", args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "add <playlist-id> <song-id>",
			Short: "Add a song to a playlist",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withApp(cmd, func(a *app.App) error {
					if err := a.Client.Playlists.AddSongToPlaylist(cmd.Context(), args[0], args[1]); err != nil {
						return fmt.Errorf("add song: %w", err)
					}
					return e.done("Added %s to playlist %s.", args[1], args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "remove <playlist-id> <song-id>",
			Short: "Remove a song from a playlist",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withApp(cmd, func(a *app.App) error {
					if err := a.Client.Playlists.RemoveSongFromPlaylist(cmd.Context(), args[0], args[1]); err != nil {
						return fmt.Errorf("remove song: %w", err)
					}
					return e.done("Removed %s from playlist %s.", args[1], args[0])
				})
			},
		},
	)
	return cmd
}

func newPlaylistCreateCommand(e *env) *cobra.Command {
	var input api.PlaylistInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(a *app.App) error {
				pl, err := a.Client.Playlists.CreatePlaylist(cmd.Context(), input)
				if err != nil {
					return fmt.Errorf("create playlist: %w", err)
				}
				if e.asJSON {
					return e.printJSON(pl)
				}
				return e.done("Created playlist %s (%s).", pl.Name, dash(pl.Key()))
			})
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "playlist name")
	cmd.Flags().StringVar(&input.Description, "description", "", "playlist description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPlaylistUpdateCommand(e *env) *cobra.Command {
	var input api.PlaylistInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or describe a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Name == "" && input.Description == "" {
				return errors.New("nothing to update: pass --name or --description")
			}
			return e.withApp(cmd, func(a *app.App) error {
				pl, err := a.Client.Playlists.UpdatePlaylist(cmd.Context(), args[0], input)
				if err != nil {
					return fmt.Errorf("update playlist: %w", err)
				}
				if e.asJSON {
					return e.printJSON(pl)
				}
				return e.done("Updated playlist %s.", dash(pl.Name))
			})
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "new name")
	cmd.Flags().StringVar(&input.Description, "description", "", "new description")
	return cmd
}
