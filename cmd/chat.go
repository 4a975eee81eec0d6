package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newChatCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Private messages with your matches",
	}

	cmd.AddCommand(newChatPeersCmd(app), newChatHistoryCmd(app), newChatSendCmd(app))

	return cmd
}

func newChatPeersCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "peers",
		Short: "List people you can message",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireSession(cmd, app); err != nil {
				return err
			}
			peers, err := app.store.Cache.LoadPeers(cmd.Context())
			if err != nil {
				return fmt.Errorf("load peers: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, peers)
			}
			for _, peer := range peers {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", peer.UserID, peer.FullName, peer.LatestMessage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print peers as JSON")

	return cmd
}

func newChatHistoryCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <peer-id>",
		Short: "Show the conversation with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireSession(cmd, app)
			if err != nil {
				return err
			}
			messages, err := app.store.Cache.LoadMessages(cmd.Context(), domain.UserID(args[0]))
			if err != nil {
				return fmt.Errorf("load messages: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, messages)
			}
			for _, message := range messages {
				who := "them"
				if message.FromUserID == session.UserID() {
					who = "you"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", message.CreatedAt.Format("2006-01-02 15:04"), who, message.Body)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print messages as JSON")

	return cmd
}

func newChatSendCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <peer-id> <message>...",
		Short: "Send a message to a peer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(cmd, app); err != nil {
				return err
			}
			body := strings.TrimSpace(strings.Join(args[1:], " "))
			if body == "" {
				return errors.New("message is empty")
			}

			if err := app.store.Chat.SelectPeer(cmd.Context(), domain.UserID(args[0])); err != nil {
				return fmt.Errorf("open conversation: %w", err)
			}
			if err := app.store.Chat.Send(cmd.Context(), body); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Message sent.")
			return err
		},
	}
}

func newAskCmd(app *app) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "ask <question>...",
		Short: "Ask the concierge for intro suggestions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(cmd, app); err != nil {
				return err
			}
			reply, err := app.store.Concierge.Ask(cmd.Context(), strings.Join(args, " "), domain.ProfileID(profile))
			if err != nil {
				return fmt.Errorf("ask concierge: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Profile ID the question is about")

	return cmd
}
