package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/hub/pkg/hubsdk"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

const defaultServer = "http://localhost:8080"

// globals holds the persistent flags shared by every command.
type globals struct {
	server  string
	token   string
	verbose bool
}

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	return newRootCmd(version, commit, date).Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "hubctl",
		Short: "Command line client for the Private Hub daemon",
		Long: `hubctl talks to a running hub daemon over its local API.

Log in with a master token, manage tokens with the administrative credential
and send or answer share invitations. The server address is taken from
--server or HUB_SERVER, the session token from --token or HUB_TOKEN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if g.verbose {
				level = "debug"
			}
			logger := slogx.New(slogx.Config{
				Service: "hubctl",
				Version: version,
				Level:   level,
				Format:  "text",
				Output:  cmd.ErrOrStderr(),
			})
			cmd.SetContext(slogx.WithContext(cmd.Context(), logger))
		},
	}

	cmd.PersistentFlags().StringVar(&g.server, "server", envOr("HUB_SERVER", defaultServer), "hub daemon URL")
	cmd.PersistentFlags().StringVar(&g.token, "token", os.Getenv("HUB_TOKEN"), "session token (default $HUB_TOKEN)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log requests to stderr")

	cmd.AddCommand(newLoginCmd(g))
	cmd.AddCommand(newLogoutCmd(g))
	cmd.AddCommand(newWhoamiCmd(g))
	cmd.AddCommand(newTokenCmd(g))
	cmd.AddCommand(newInviteCmd(g))
	cmd.AddCommand(newHealthCmd(g))
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func (g *globals) client() *hubsdk.SDKClient {
	return hubsdk.NewSDKClient(g.server)
}

// session wraps the configured token. Commands that need one fail early
// when it is missing.
func (g *globals) session() (*hubsdk.Session, error) {
	if g.token == "" {
		return nil, errors.New("no session token: pass --token or set HUB_TOKEN (see 'hubctl login')")
	}
	return g.client().NewSession(g.token), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
