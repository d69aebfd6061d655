//go:build e2e

package hub_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hub/pkg/hubsdk"
)

func TestHealthEndpoints(t *testing.T) {
	hub := setupHubContainer(t, nil)
	client := hubsdk.NewSDKClient(hub.BaseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)

	health, err = client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Store)
}
