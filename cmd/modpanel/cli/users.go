package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillexchange/modpanel/internal/model"
	"github.com/skillexchange/modpanel/internal/moderation"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Inspect users and change their moderation status",
	}

	cmd.AddCommand(newUsersShowCmd())
	cmd.AddCommand(newUsersSetStatusCmd())

	return cmd
}

// ---------- users show ----------

func newUsersShowCmd() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user with their moderation stats and reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.loadData(cmd.Context()); err != nil {
				return err
			}

			id := args[0]
			user, err := a.cache.FetchUser(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("look up user %s: %w", id, err)
			}
			stats := a.cache.UserModeration(id)
			reports := a.cache.ReportsForUser(id)
			if reports == nil {
				reports = []model.Report{}
			}

			detail := struct {
				User    *model.User                `json:"user" yaml:"user"`
				Stats   *model.UserModerationStats `json:"stats,omitempty" yaml:"stats,omitempty"`
				Reports []model.Report             `json:"reports" yaml:"reports"`
			}{user, stats, reports}

			return out.render(cmd.OutOrStdout(), detail, func() {
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "User %s\n", user.ID)
				fmt.Fprintf(w, "  username:  %s\n", user.Username)
				fmt.Fprintf(w, "  email:     %s\n", user.Email)
				if len(user.Skill) > 0 {
					fmt.Fprintf(w, "  skills:    %s\n", strings.Join(user.Skill, ", "))
				}
				if user.Banned {
					fmt.Fprintf(w, "  banned:    yes (%s)\n", user.BanReason)
				}
				if stats != nil {
					fmt.Fprintf(w, "  status:    %s\n", stats.Status)
					fmt.Fprintf(w, "  reports:   %d received, %d open\n", stats.ReportsReceived, stats.OpenReports)
					if stats.LastReportedAt != nil {
						fmt.Fprintf(w, "  last:      %s\n", formatTime(*stats.LastReportedAt))
					}
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, "Reports against this user")
				printReportTable(w, a.cache, reports)
			})
		},
	}

	out.register(cmd)
	return cmd
}

// ---------- users set-status ----------

func newUsersSetStatusCmd() *cobra.Command {
	var (
		note string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "set-status <user-id> <ACTIVE|SUSPENDED|BANNED|DELETED>",
		Short: "Change a user's moderation status",
		Long: `Change a user's moderation status on the backend.

BANNED bans the account using --note as the ban reason. DELETED deletes the
account. ACTIVE and SUSPENDED update the account's status field.`,
		Example: `  modpanel users set-status 65f1c0 banned --note "spam bot"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseUserStatus(args[1])
			if err != nil {
				return err
			}
			if status == model.UserStatusDeleted && !yes &&
				!confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete user %s?", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.loadData(cmd.Context()); err != nil {
				return err
			}

			if err := a.cache.SetUserStatus(cmd.Context(), args[0], status, note); err != nil {
				return fmt.Errorf("set status of user %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s is now %s\n", args[0], status)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Reason; used as the ban reason for BANNED")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt for DELETED")
	return cmd
}

// ---------- actions ----------

func newActionsCmd() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List moderation actions and whether the backend persists them",
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := moderation.Actions()
			return out.render(cmd.OutOrStdout(), actions, func() {
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%-24s %s\n", "ACTION", "CONSISTENCY")
				for _, act := range actions {
					fmt.Fprintf(w, "%-24s %s\n", act.Name, act.Consistency)
				}
			})
		},
	}

	out.register(cmd)
	return cmd
}
