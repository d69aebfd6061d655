package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/hub/pkg/hubsdk"
)

func newInviteCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invite",
		Aliases: []string{"share"},
		Short:   "Send and answer share invitations",
		Long:    "Offer your data for one app to another token, and accept or reject invitations addressed to you.",
	}

	cmd.AddCommand(newInviteSendCmd(g))
	cmd.AddCommand(newInviteListCmd(g, "inbox", "Pending invitations addressed to you", (*hubsdk.Session).InboundInvitations))
	cmd.AddCommand(newInviteListCmd(g, "outbox", "Pending invitations you have sent", (*hubsdk.Session).OutboundInvitations))
	cmd.AddCommand(newInviteRespondCmd(g, "accept", hubsdk.DecisionAccepted))
	cmd.AddCommand(newInviteRespondCmd(g, "reject", hubsdk.DecisionRejected))

	return cmd
}

// ---------- invite send ----------

func newInviteSendCmd(g *globals) *cobra.Command {
	var (
		app     string
		message string
	)

	cmd := &cobra.Command{
		Use:   "send <recipient-token>",
		Short: "Invite another token to receive your data for an app",
		Example: `  hubctl invite send 3f9c... --app notes
  hubctl invite send 3f9c... --app todos --message "Our shopping list"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := g.session()
			if err != nil {
				return err
			}

			inv, err := session.SendInvitation(cmd.Context(), hubsdk.SendInvitationRequest{
				ToToken: args[0],
				AppType: app,
				Message: message,
			})
			if err != nil {
				if hubsdk.IsRejected(err) {
					return errors.New("invitation could not be sent")
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Invitation %s sent to %s for %s.\n", inv.ID, inv.ToToken, inv.AppName)
			fmt.Fprintf(out, "It expires %s.\n", formatTime(inv.ExpiresAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "App whose data is shared, e.g. notes, todos, contacts (required)")
	cmd.Flags().StringVar(&message, "message", "", "Message shown to the recipient")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}

// ---------- invite inbox / outbox ----------

type listFunc func(*hubsdk.Session, context.Context) ([]hubsdk.InvitationResponse, error)

func newInviteListCmd(g *globals, use, short string, list listFunc) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := g.session()
			if err != nil {
				return err
			}

			invs, err := list(session, cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, invs)
			}

			out := cmd.OutOrStdout()
			if len(invs) == 0 {
				fmt.Fprintln(out, "No pending invitations.")
				return nil
			}

			fmt.Fprintf(out, "%-26s %-20s %-18s %-16s %s\n", "ID", "FROM", "APP", "EXPIRES", "MESSAGE")
			fmt.Fprintf(out, "%-26s %-20s %-18s %-16s %s\n", "--", "----", "---", "-------", "-------")
			for _, inv := range invs {
				from := inv.SenderName
				if from == "" {
					from = inv.FromToken
				}
				fmt.Fprintf(out, "%-26s %-20s %-18s %-16s %s\n",
					inv.ID, truncate(from, 20), truncate(inv.AppName, 18), formatTime(inv.ExpiresAt), inv.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// ---------- invite accept / reject ----------

func newInviteRespondCmd(g *globals, use, decision string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <invitation-id>",
		Short: fmt.Sprintf("Mark an invitation as %s", decision),
		Long:  "Answer an invitation addressed to you. Unknown, expired or already answered invitations are ignored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := g.session()
			if err != nil {
				return err
			}
			if err := session.RespondInvitation(cmd.Context(), args[0], decision); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invitation %s %s.\n", args[0], decision)
			return nil
		},
	}
}
