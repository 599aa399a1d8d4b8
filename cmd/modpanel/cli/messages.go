package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillexchange/modpanel/internal/model"
	"github.com/skillexchange/modpanel/internal/moderation"
)

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"message"},
		Short:   "Inspect and moderate chat messages",
	}

	cmd.AddCommand(newMessagesChatsCmd())
	cmd.AddCommand(newMessagesListCmd())
	cmd.AddCommand(newMessagesVisibilityCmd("hide", "Hide a message (local only)", model.ModerationHiddenAdmin))
	cmd.AddCommand(newMessagesVisibilityCmd("unhide", "Make a hidden message visible (local only)", model.ModerationVisible))
	cmd.AddCommand(newMessagesDeleteCmd())

	return cmd
}

func newMessagesChatsCmd() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "chats [user-id]",
		Short: "List chats, or only the chats a user is a member of",
		Long:  "List chats with their members. The chat ids are what --chat takes in the other messages commands.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var userID string
			if len(args) == 1 {
				userID = args[0]
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.loadData(cmd.Context()); err != nil {
				return err
			}

			chats, err := a.cache.Chats(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("list chats: %w", err)
			}
			return out.render(cmd.OutOrStdout(), chats, func() {
				w := cmd.OutOrStdout()
				if len(chats) == 0 {
					fmt.Fprintln(w, "No chats.")
					return
				}
				fmt.Fprintf(w, "%-26s %-16s %s\n", "ID", "UPDATED", "MEMBERS")
				for _, c := range chats {
					members := make([]string, 0, len(c.Members))
					for _, m := range c.Members {
						members = append(members, a.cache.UserLabel(m))
					}
					fmt.Fprintf(w, "%-26s %-16s %s\n",
						truncate(c.ID, 26),
						formatTime(c.UpdatedAt),
						strings.Join(members, ", "),
					)
				}
			})
		},
	}

	out.register(cmd)
	return cmd
}

func newMessagesListCmd() *cobra.Command {
	var (
		out    outputFlags
		chatID string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the messages of a chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.loadData(cmd.Context()); err != nil {
				return err
			}

			msgs, err := a.cache.LoadChatMessages(cmd.Context(), chatID)
			if err != nil {
				return fmt.Errorf("load chat %s: %w", chatID, err)
			}
			if msgs == nil {
				msgs = []model.Message{}
			}
			return out.render(cmd.OutOrStdout(), msgs, func() {
				w := cmd.OutOrStdout()
				if len(msgs) == 0 {
					fmt.Fprintln(w, "No messages.")
					return
				}
				fmt.Fprintf(w, "%-26s %-18s %-13s %-16s %s\n", "ID", "SENDER", "VISIBILITY", "SENT", "CONTENT")
				for _, m := range msgs {
					vis := m.ModerationStatus
					if vis == "" {
						vis = model.ModerationVisible
					}
					fmt.Fprintf(w, "%-26s %-18s %-13s %-16s %s\n",
						truncate(m.ID, 26),
						truncate(a.cache.UserLabel(m.Sender), 18),
						vis,
						formatTime(m.CreatedAt),
						truncate(m.Content, 50),
					)
				}
			})
		},
	}

	cmd.Flags().StringVar(&chatID, "chat", "", "Chat ID (required)")
	cmd.MarkFlagRequired("chat")
	out.register(cmd)

	return cmd
}

func newMessagesVisibilityCmd(use, short string, status model.ModerationStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <message-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			if err := a.cache.SetMessageModeration(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Message %s is now %s\n", args[0], status)
			localOnlyNotice(cmd.OutOrStdout(), moderation.ConsistencyOf("set_message_moderation"))
			return nil
		},
	}
}

func newMessagesDeleteCmd() *cobra.Command {
	var (
		chatID string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete a message on the backend",
		Long:  "Delete a message. The chat is loaded first because the backend needs the message's sender.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete message %s?", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			if _, err := a.cache.LoadChatMessages(cmd.Context(), chatID); err != nil {
				return fmt.Errorf("load chat %s: %w", chatID, err)
			}
			if err := a.cache.DeleteMessage(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete message %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted message %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&chatID, "chat", "", "Chat the message belongs to (required)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.MarkFlagRequired("chat")

	return cmd
}
