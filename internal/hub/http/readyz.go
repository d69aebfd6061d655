package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/pkg/httpx"
	"github.com/aussiebroadwan/hub/pkg/hubsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness check that also pings the persistent store.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	hubsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	hubsdk.HealthResponse	"store unreachable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &hubsdk.HealthChecks{Store: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Store = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, hubsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
