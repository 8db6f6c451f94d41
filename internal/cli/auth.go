package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/app"
	"github.com/five82/tunesphere/internal/session"
)

var errNotSignedIn = errors.New("not signed in (run `tunesphere login`)")

type credentials struct {
	name     string
	email    string
	password string
}

func (c *credentials) bind(cmd *cobra.Command, withName bool) {
	if withName {
		cmd.Flags().StringVar(&c.name, "name", "", "display name")
		_ = cmd.MarkFlagRequired("name")
	}
	cmd.Flags().StringVar(&c.email, "email", "", "account email")
	cmd.Flags().StringVar(&c.password, "password", "", "password (omit or \"-\" to read from stdin)")
	_ = cmd.MarkFlagRequired("email")
}

func (e *env) report(res session.Result, a *app.App) error {
	if !res.Success {
		return errors.New(res.Message)
	}
	snap := a.Session.Snapshot()
	role := "user"
	if snap.IsAdmin {
		role = "admin"
	}
	return e.done("Signed in as %s (%s).", displayName(snap), role)
}

func newLoginCommand(e *env) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readSecret(cmd.InOrStdin(), c.password, "password")
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(a *app.App) error {
				return e.report(a.Session.Login(cmd.Context(), c.email, password), a)
			})
		},
	}
	c.bind(cmd, false)
	return cmd
}

func newRegisterCommand(e *env) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readSecret(cmd.InOrStdin(), c.password, "password")
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(a *app.App) error {
				return e.report(a.Session.Register(cmd.Context(), c.name, c.email, password), a)
			})
		},
	}
	c.bind(cmd, true)
	return cmd
}

func newAdminLoginCommand(e *env) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "admin-login",
		Short: "Sign in with an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readSecret(cmd.InOrStdin(), c.password, "password")
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(a *app.App) error {
				return e.report(a.Session.AdminLogin(cmd.Context(), c.email, password), a)
			})
		},
	}
	c.bind(cmd, false)
	return cmd
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(a *app.App) error {
				a.Session.Logout(cmd.Context())
				return e.done("Signed out.")
			})
		},
	}
}

type whoami struct {
	Status    string     `json:"status"`
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	IsAdmin   bool       `json:"isAdmin"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func newWhoamiCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(a *app.App) error {
				snap := a.Session.Snapshot()
				info := whoami{Status: snap.Status.String(), IsAdmin: snap.IsAdmin}
				if snap.User != nil {
					info.ID = string(snap.User.ID)
					info.Name = snap.User.Name
					info.Email = snap.User.Email
				}
				if exp, ok := session.TokenExpiry(snap.Token); ok {
					info.ExpiresAt = &exp
				}
				if e.asJSON {
					return e.printJSON(info)
				}
				if !snap.Authenticated() {
					return errNotSignedIn
				}
				w := e.table("FIELD", "VALUE")
				fmt.Fprintf(w, "id\t%s\n", dash(info.ID))
				fmt.Fprintf(w, "name\t%s\n", dash(info.Name))
				fmt.Fprintf(w, "email\t%s\n", dash(info.Email))
				fmt.Fprintf(w, "admin\t%s\n", yesNo(info.IsAdmin))
				if info.ExpiresAt != nil {
					fmt.Fprintf(w, "expires\t%s\n", info.ExpiresAt.Local().Format(time.RFC1123))
				}
				return w.Flush()
			})
		},
	}
}

func newProfileCommand(e *env) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.name == "" && c.email == "" && c.password == "" {
				return errors.New("nothing to update: pass --name, --email or --password")
			}
			return e.withApp(cmd, func(a *app.App) error {
				if !a.Session.Snapshot().Authenticated() {
					return errNotSignedIn
				}
				res := a.Session.UpdateUserProfile(cmd.Context(), profileUpdate(c))
				if !res.Success {
					return errors.New(res.Message)
				}
				return e.done("Profile updated for %s.", displayName(a.Session.Snapshot()))
			})
		},
	}
	cmd.Flags().StringVar(&c.name, "name", "", "new display name")
	cmd.Flags().StringVar(&c.email, "email", "", "new email")
	cmd.Flags().StringVar(&c.password, "password", "", "new password")
	return cmd
}

func displayName(snap session.Snapshot) string {
	if snap.User == nil {
		return "-"
	}
	if snap.User.Name != "" {
		return snap.User.Name
	}
	if snap.User.Email != "" {
		return snap.User.Email
	}
	return string(snap.User.ID)
}

func profileUpdate(c credentials) api.ProfileUpdate {
	return api.ProfileUpdate{Name: c.name, Email: c.email, Password: c.password}
}
