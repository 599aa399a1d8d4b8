package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/skillexchange/modpanel/internal/model"
	"github.com/skillexchange/modpanel/internal/moderation"
)

// ---------- dashboard ----------

func newDashboardCmd() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize the moderation queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.loadData(cmd.Context()); err != nil {
				return err
			}

			summary := a.cache.DashboardSummary()
			return out.render(cmd.OutOrStdout(), summary, func() {
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Open reports: %d\n\n", summary.OpenReportsCount)

				fmt.Fprintln(w, "Most reported users")
				if len(summary.TopReportedUsers) == 0 {
					fmt.Fprintln(w, "  (none)")
				} else {
					fmt.Fprintf(w, "  %-24s %-10s %-8s %-10s\n", "USER", "RECEIVED", "OPEN", "STATUS")
					for _, s := range summary.TopReportedUsers {
						fmt.Fprintf(w, "  %-24s %-10d %-8d %-10s\n",
							truncate(a.cache.UserLabel(model.IDRef(s.UserID)), 24), s.ReportsReceived, s.OpenReports, s.Status)
					}
				}
				fmt.Fprintln(w)

				fmt.Fprintln(w, "Newest open reports")
				printReportTable(w, a.cache, summary.RecentOpenReports)
			})
		},
	}

	out.register(cmd)
	return cmd
}

// ---------- reports ----------

func newReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Browse and act on user reports",
	}

	cmd.AddCommand(newReportsListCmd())
	cmd.AddCommand(newReportsShowCmd())
	cmd.AddCommand(newReportsAddCmd())
	cmd.AddCommand(newReportsResolveCmd())
	cmd.AddCommand(newReportsRejectCmd())
	cmd.AddCommand(newReportsDeleteCmd())

	return cmd
}

func newReportsListCmd() *cobra.Command {
	var (
		out     outputFlags
		filters model.ReportFilters
		limit   int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List reports newest first",
		Example: `  modpanel reports list --status open
  modpanel reports list --reason spam --search alice --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := moderation.ValidateFilters(filters); err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.loadData(cmd.Context()); err != nil {
				return err
			}

			reports := a.cache.FilteredReports(filters)
			if limit > 0 && len(reports) > limit {
				reports = reports[:limit]
			}
			return out.render(cmd.OutOrStdout(), reports, func() {
				printReportTable(cmd.OutOrStdout(), a.cache, reports)
			})
		},
	}

	cmd.Flags().StringVar(&filters.Status, "status", "", "OPEN, UNDER_REVIEW, RESOLVED, REJECTED or ALL")
	cmd.Flags().StringVar(&filters.TargetType, "target-type", "", "USER, MESSAGE or ALL")
	cmd.Flags().StringVar(&filters.ReasonCode, "reason", "", "HARASSMENT, SPAM, HATE, SCAM, VIOLENCE, OTHER or ALL")
	cmd.Flags().StringVar(&filters.Search, "search", "", "Match id, usernames or content")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of reports to show (0 = all)")
	out.register(cmd)

	return cmd
}

func newReportsShowCmd() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show one report",
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

			report := a.cache.ReportByID(args[0])
			if report == nil {
				return fmt.Errorf("report %q not found", args[0])
			}
			return out.render(cmd.OutOrStdout(), report, func() {
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Report %s\n", report.ID)
				fmt.Fprintf(w, "  status:    %s\n", report.Status)
				fmt.Fprintf(w, "  reason:    %s\n", report.ReasonCode)
				fmt.Fprintf(w, "  target:    %s (%s)\n", a.cache.UserLabel(report.Target), report.TargetType)
				fmt.Fprintf(w, "  reporter:  %s\n", a.cache.UserLabel(report.Reporter))
				fmt.Fprintf(w, "  created:   %s\n", formatTime(report.CreatedAt))
				fmt.Fprintf(w, "  content:   %s\n", report.Content)
				if report.Evidence != "" {
					fmt.Fprintf(w, "  evidence:  %s\n", report.Evidence)
				}
				if report.ResolutionNote != "" {
					fmt.Fprintf(w, "  note:      %s\n", report.ResolutionNote)
				}
			})
		},
	}

	out.register(cmd)
	return cmd
}

func newReportsAddCmd() *cobra.Command {
	var targetID, content, evidence string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "File a report against a user in the admin's name",
		Example: `  modpanel reports add --target 65f1c0 --content "scam offers in chat"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.loadData(cmd.Context()); err != nil {
				return err
			}

			report, err := a.cache.FileReport(cmd.Context(), targetID, content, evidence)
			if err != nil {
				return fmt.Errorf("file report against %s: %w", targetID, err)
			}
			if report == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Filed report against %s (report list refreshed)\n", targetID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Filed report %s against %s\n", report.ID, targetID)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetID, "target", "", "ID of the reported user (required)")
	cmd.Flags().StringVar(&content, "content", "", "What the user did (required)")
	cmd.Flags().StringVar(&evidence, "evidence", "", "Link or reference to evidence")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("content")

	return cmd
}

func newReportsResolveCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "resolve <report-id>",
		Short: "Resolve a report on the backend",
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

			if err := a.cache.ResolveReport(cmd.Context(), args[0], note); err != nil {
				return fmt.Errorf("resolve report %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolved report %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Resolution note")
	return cmd
}

func newReportsRejectCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "reject <report-id>",
		Short: "Reject a report as unfounded (local only)",
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

			if a.cache.ReportByID(args[0]) == nil {
				return fmt.Errorf("report %q not found", args[0])
			}
			if err := a.cache.RejectReport(cmd.Context(), args[0], note); err != nil {
				return fmt.Errorf("reject report %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rejected report %s\n", args[0])
			localOnlyNotice(cmd.OutOrStdout(), moderation.ConsistencyOf("reject_report"))
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Reason for rejecting")
	return cmd
}

func newReportsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <report-id>",
		Short: "Delete a report on the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete report %s?", args[0])) {
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

			if err := a.cache.DeleteReport(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete report %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted report %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// labeler resolves user references to display names.
type labeler interface {
	UserLabel(ref model.Ref) string
}

func printReportTable(w io.Writer, users labeler, reports []model.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	fmt.Fprintf(w, "  %-26s %-13s %-11s %-18s %-18s %-16s %s\n",
		"ID", "STATUS", "REASON", "REPORTER", "TARGET", "CREATED", "CONTENT")
	for _, r := range reports {
		fmt.Fprintf(w, "  %-26s %-13s %-11s %-18s %-18s %-16s %s\n",
			truncate(r.ID, 26),
			r.Status,
			r.ReasonCode,
			truncate(users.UserLabel(r.Reporter), 18),
			truncate(users.UserLabel(r.Target), 18),
			formatTime(r.CreatedAt),
			truncate(r.Content, 40),
		)
	}
}
