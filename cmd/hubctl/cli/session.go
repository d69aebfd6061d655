package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/hub/pkg/hubsdk"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

// ---------- login ----------

func newLoginCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [token]",
		Short: "Start a session with a master token",
		Long:  "Log the daemon in with a master token, replacing any current session. The token defaults to --token / HUB_TOKEN.",
		Example: `  hubctl login 5419810
  HUB_TOKEN=... hubctl login`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := g.token
			if len(args) == 1 {
				token = args[0]
			}
			if token == "" {
				return errors.New("a token is required")
			}

			session, err := g.client().Login(cmd.Context(), token)
			if err != nil {
				if hubsdk.IsAccessDenied(err) {
					return errors.New("access denied")
				}
				return err
			}

			slogx.FromContext(cmd.Context()).Debug("logged in", slog.String("server", g.server))

			info := session.Info()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s (%s)\n", info.Identity, info.TokenMasked)
			fmt.Fprintf(out, "Session expires %s\n", formatTime(info.ExpiresAt))
			if len(args) == 1 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "  Export HUB_TOKEN to use this session from other commands.")
			}
			return nil
		},
	}

	return cmd
}

// ---------- logout ----------

func newLogoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the daemon's session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := g.session()
			if err != nil {
				return err
			}
			if err := session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// ---------- whoami ----------

func newWhoamiCmd(g *globals) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the live session and its identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := g.session()
			if err != nil {
				return err
			}

			me, err := session.Current(cmd.Context())
			if err != nil {
				if hubsdk.IsUnauthorized(err) {
					return errors.New("not logged in")
				}
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, me)
			}

			role := "user"
			if me.Privileged {
				role = "admin"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Identity: %s\n", me.Identity)
			fmt.Fprintf(out, "Token:    %s\n", me.TokenMasked)
			fmt.Fprintf(out, "Role:     %s\n", role)
			fmt.Fprintf(out, "Expires:  %s\n", formatTime(me.ExpiresAt))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// ---------- health ----------

func newHealthCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the daemon and its store are ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := g.client().GetReadiness(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (version %s, up %s)\n", health.Status, health.Version, health.Uptime)
			return nil
		},
	}
}
