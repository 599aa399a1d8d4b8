package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ---------- login ----------

func newLoginCmd() *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a SkillExchange administrator",
		Long: `Log in to the SkillExchange backend. Only admin accounts are accepted.

The session is kept in the data directory until logout. With --remember it
also survives an expired session cookie for seven days.`,
		Example: `  modpanel login --email admin@skillexchange.com            # prompts for password
  modpanel login --email admin@skillexchange.com --remember`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.Contains(email, "@") {
				return fmt.Errorf("invalid email address: %q", email)
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr())
				password = string(pwBytes)
			}
			if password == "" {
				return errors.New("password is required")
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.manager.Login(cmd.Context(), email, password, remember) {
				return fmt.Errorf("login failed: %s", a.manager.Error())
			}
			state := a.manager.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", state.Email)
			if state.ExpiresAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  token expires: %s\n", state.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Remember the session for seven days")
	cmd.MarkFlagRequired("email")

	return cmd
}

// ---------- logout ----------

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the admin session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.manager.IsAuthed() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			a.manager.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// ---------- whoami ----------

func newWhoamiCmd() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current admin session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			state := a.manager.Snapshot()
			return out.render(cmd.OutOrStdout(), state, func() {
				w := cmd.OutOrStdout()
				if !state.IsAuthed {
					fmt.Fprintln(w, "Not logged in.")
					return
				}
				fmt.Fprintf(w, "Email:     %s\n", state.Email)
				if state.User != nil {
					fmt.Fprintf(w, "User ID:   %s\n", state.User.ID)
					if state.User.Username != "" {
						fmt.Fprintf(w, "Username:  %s\n", state.User.Username)
					}
				}
				fmt.Fprintf(w, "Remember:  %t\n", state.RememberMe)
				if state.ExpiresAt != nil {
					fmt.Fprintf(w, "Expires:   %s\n", state.ExpiresAt.Local().Format("2006-01-02 15:04"))
				}
			})
		},
	}

	out.register(cmd)
	return cmd
}
