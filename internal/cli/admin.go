package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/app"
)

// withAdmin is withApp for commands that need an administrator session.
func (e *env) withAdmin(cmd *cobra.Command, fn func(a *app.App) error) error {
	return e.withSession(cmd, func(a *app.App) error {
		if !a.Session.Snapshot().IsAdmin {
			return fmt.Errorf("administrator session required (run `tunesphere admin-login`)")
		}
		return fn(a)
	})
}

func newAdminCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator dashboard and moderation",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "dashboard",
			Short: "Show service statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.withAdmin(cmd, func(a *app.App) error {
					stats, err := a.Client.Admin.GetDashboardStats(cmd.Context())
					if err != nil {
						return fmt.Errorf("dashboard: %w", err)
					}
					if e.asJSON {
						return e.printJSON(stats)
					}
					w := e.table("METRIC", "VALUE")
					fmt.Fprintf(w, "users\t%d\n", stats.TotalUsers)
					fmt.Fprintf(w, "admins\t%d\n", stats.TotalAdmins)
					fmt.Fprintf(w, "songs\t%d\n", stats.TotalSongs)
					fmt.Fprintf(w, "playlists\t%d\n", stats.TotalPlaylists)
					fmt.Fprintf(w, "new users\t%d\n", stats.RecentUsers)
					fmt.Fprintf(w, "new songs\t%d\n", stats.RecentSongs)
					return w.Flush()
				})
			},
		},
		newAdminUsersCommand(e),
		&cobra.Command{
			Use:   "user <id>",
			Short: "Show one user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withAdmin(cmd, func(a *app.App) error {
					user, err := a.Client.Admin.GetUserByID(cmd.Context(), args[0])
					if err != nil {
						return fmt.Errorf("get user: %w", err)
					}
					return e.printUsers([]api.User{user})
				})
			},
		},
		&cobra.Command{
			Use:   "delete-user <id>",
			Short: "Delete a user account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withAdmin(cmd, func(a *app.App) error {
					if err := a.Client.Admin.DeleteUser(cmd.Context(), args[0]); err != nil {
						return fmt.Errorf("delete user: %w", err)
					}
					return e.done("Deleted user %s.", args[0])
				})
			},
		},
		newAdminActivityCommand(e),
		newAdminTopSongsCommand(e),
		&cobra.Command{
			Use:   "feature <playlist-id>",
			Short: "Feature a playlist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withAdmin(cmd, func(a *app.App) error {
					if err := a.Client.Admin.AddFeaturedPlaylist(cmd.Context(), args[0]); err != nil {
						return fmt.Errorf("feature playlist: %w", err)
					}
					return e.done("Featured playlist %s.", args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "unfeature <id>",
			Short: "Stop featuring a playlist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withAdmin(cmd, func(a *app.App) error {
					if err := a.Client.Admin.RemoveFeaturedPlaylist(cmd.Context(), args[0]); err != nil {
						return fmt.Errorf("unfeature playlist: %w", err)
					}
					return e.done("Removed featured playlist %s.", args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "featured",
			Short: "List featured playlists as administrators see them",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.withAdmin(cmd, func(a *app.App) error {
					playlists, err := a.Client.Admin.GetFeaturedPlaylists(cmd.Context())
					if err != nil {
						return fmt.Errorf("featured playlists: %w", err)
					}
					return e.printPlaylists(playlists)
				})
			},
		},
		&cobra.Command{
			Use:   "search-users <query>",
			Short: "Search users by name or email",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withAdmin(cmd, func(a *app.App) error {
					users, err := a.Client.Admin.SearchUsers(cmd.Context(), strings.Join(args, " "))
					if err != nil {
						return fmt.Errorf("search users: %w", err)
					}
					return e.printUsers(users)
				})
			},
		},
	)
	return cmd
}

func newAdminUsersCommand(e *env) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withAdmin(cmd, func(a *app.App) error {
				result, err := a.Client.Admin.GetAllUsers(cmd.Context(), page, limit)
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
				if e.asJSON {
					return e.printJSON(result)
				}
				if err := e.printUsers(result.Users); err != nil {
					return err
				}
				fmt.Fprintf(e.out, "\npage %d of %d, %d users\n", result.Page, result.TotalPages, result.Total)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "users per page")
	return cmd
}

func newAdminActivityCommand(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the recent activity feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withAdmin(cmd, func(a *app.App) error {
				items, err := a.Client.Admin.GetRecentActivity(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("activity: %w", err)
				}
				if e.asJSON {
					return e.printJSON(nonNil(items))
				}
				w := e.table("WHEN", "TYPE", "USER", "DESCRIPTION")
				for _, item := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", dash(item.CreatedAt), dash(item.Type), dash(item.UserName), dash(item.Description))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries")
	return cmd
}

func newAdminTopSongsCommand(e *env) *cobra.Command {
	var (
		limit    int
		platform string
	)
	cmd := &cobra.Command{
		Use:   "top-songs",
		Short: "Show the most searched songs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := api.Platform(strings.ToLower(strings.TrimSpace(platform)))
			if p != "" && !p.Valid() {
				return fmt.Errorf("unknown platform %q", platform)
			}
			return e.withAdmin(cmd, func(a *app.App) error {
				songs, err := a.Client.Admin.GetTopSearchedSongs(cmd.Context(), limit, p)
				if err != nil {
					return fmt.Errorf("top songs: %w", err)
				}
				if e.asJSON {
					return e.printJSON(nonNil(songs))
				}
				w := e.table("#", "TITLE", "ARTIST", "PLATFORM", "SEARCHES")
				for i, s := range songs {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", i+1, dash(s.Title), dash(s.Artist), dash(string(s.Platform)), s.SearchCount)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of songs")
	cmd.Flags().StringVar(&platform, "platform", "", "restrict to one platform")
	return cmd
}
