package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/hub/pkg/hubsdk"
)

func newTokenCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage master tokens",
		Long:  "Create, list, enable/disable and delete master tokens. Requires a session with the administrative credential.",
	}

	cmd.AddCommand(newTokenCreateCmd(g))
	cmd.AddCommand(newTokenListCmd(g))
	cmd.AddCommand(newTokenToggleCmd(g))
	cmd.AddCommand(newTokenDeleteCmd(g))

	return cmd
}

// ---------- token create ----------

func newTokenCreateCmd(g *globals) *cobra.Command {
	var (
		name      string
		expiresIn time.Duration
		value     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a master token",
		Long:  "Issue a new active token. The full value is shown once and cannot be retrieved again.",
		Example: `  hubctl token create --name Alice
  hubctl token create --name Guest --expires-in 72h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := g.session()
			if err != nil {
				return err
			}

			req := hubsdk.CreateTokenRequest{Name: name, Value: value}
			if expiresIn > 0 {
				at := time.Now().Add(expiresIn).UTC()
				req.ExpiresAt = &at
			}

			tok, err := session.CreateToken(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Token created:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  ID:      %s\n", tok.ID)
			fmt.Fprintf(out, "  Name:    %s\n", tok.Name)
			fmt.Fprintf(out, "  Token:   %s\n", tok.Token)
			fmt.Fprintf(out, "  Expires: %s\n", formatExpiry(tok.ExpiresAt))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  Save this token now - it cannot be retrieved again.")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name of the token owner (required)")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "Lifetime of the token, e.g. 720h (default: never expires)")
	cmd.Flags().StringVar(&value, "value", "", "Use this value instead of a generated one")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// ---------- token list ----------

func newTokenListCmd(g *globals) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List master tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := g.session()
			if err != nil {
				return err
			}

			list, err := session.ListTokens(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, list)
			}

			out := cmd.OutOrStdout()
			s := list.Stats
			fmt.Fprintf(out, "%d tokens: %d active, %d expired, %d disabled (including the default token)\n\n",
				s.Total, s.Active, s.Expired, s.Disabled)

			if len(list.Tokens) == 0 {
				fmt.Fprintln(out, "No tokens created yet. Use 'hubctl token create' to create one.")
				return nil
			}

			fmt.Fprintf(out, "%-26s %-20s %-10s %-9s %-16s\n", "ID", "NAME", "TOKEN", "STATUS", "EXPIRES")
			fmt.Fprintf(out, "%-26s %-20s %-10s %-9s %-16s\n", "--", "----", "-----", "------", "-------")
			for _, t := range list.Tokens {
				fmt.Fprintf(out, "%-26s %-20s %-10s %-9s %-16s\n",
					t.ID, truncate(t.Name, 20), t.Token, t.Status, formatExpiry(t.ExpiresAt))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// ---------- token toggle ----------

func newTokenToggleCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Enable a disabled token or disable an active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := g.session()
			if err != nil {
				return err
			}
			if err := session.ToggleToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token %s toggled.\n", args[0])
			return nil
		},
	}
}

// ---------- token delete ----------

func newTokenDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a token",
		Long:    "Delete a token. A session already using it stays logged in until it expires or logs out.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := g.session()
			if err != nil {
				return err
			}
			if err := session.DeleteToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token %s deleted.\n", args[0])
			return nil
		},
	}
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

