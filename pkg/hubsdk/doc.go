/*
Package hubsdk provides a Go client for the hub daemon's local API.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (health checks) and login.
  - Session: operations performed as the logged-in credential.

Log in to obtain a Session:

	client := hubsdk.NewSDKClient("http://127.0.0.1:8080")

	session, err := client.Login(ctx, token)
	if hubsdk.IsAccessDenied(err) {
		// generic "access denied", no reason is given
	}

A Session can also be rebuilt from a token that is already logged in, for
example by a CLI that keeps the token in an environment variable:

	session := client.NewSession(os.Getenv("HUB_TOKEN"))
	me, err := session.Current(ctx)

# Credential management

Only the default administrative credential may manage tokens:

	created, err := session.CreateToken(ctx, hubsdk.CreateTokenRequest{Name: "Alice"})
	list, err := session.ListTokens(ctx)
	err = session.ToggleToken(ctx, created.ID)
	err = session.DeleteToken(ctx, created.ID)

# Share invitations

	inv, err := session.SendInvitation(ctx, hubsdk.SendInvitationRequest{
		ToToken: recipient,
		AppType: "notes",
	})
	inbox, err := session.InboundInvitations(ctx)
	err = session.AcceptInvitation(ctx, inv.ID)

# Errors

Non-2xx responses are returned as *APIError carrying the HTTP status, an error
code and a description.
*/
package hubsdk
