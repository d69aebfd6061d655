package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hub/internal/hub/audit"
	"github.com/aussiebroadwan/hub/internal/hub/service"
	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/internal/hub/store/drivers/memory"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

func newMemoryApp(kv store.KV) *Application {
	app := &Application{
		logger: slogx.Discard(),
		db:     store.New(kv, store.Base64Codec{}),
		merges: &service.MergeRegistry{},
	}
	app.audit = audit.NewDispatcher(audit.Discard, app.logger, audit.Config{})
	app.initServices()
	return app
}

func TestRestoreWithoutSessionKeepsResources(t *testing.T) {
	kv := memory.New()
	app := newMemoryApp(kv)
	app.audit.Start()
	t.Cleanup(func() { _ = app.close() })

	require.NoError(t, app.restore(context.Background()))
	require.NoError(t, kv.Ping(context.Background()))
}

func TestRestoreFailureReleasesResources(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, store.KeySession, []byte("!!not-base64")))

	app := newMemoryApp(kv)
	app.audit.Start()

	err := app.restore(ctx)
	require.ErrorContains(t, err, "failed to restore session")
	require.ErrorIs(t, kv.Ping(ctx), store.ErrClosed, "store is closed")

	app.audit.Emit(ctx, audit.NewEvent(audit.KindLogout, time.Now(), "t", ""))
	require.Equal(t, uint64(1), app.audit.Dropped(), "dispatcher is stopped")
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{
		"HUB_STORE_DRIVER", "HUB_DATABASE_FILE", "HUB_STORE_ENCODING",
		"HUB_AUDIT_REDACT_FAILED_LOGINS", "HUB_MIN_LOGIN_DURATION", "PORT",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "sqlite", cfg.StoreDriver)
	require.Equal(t, "hub.db", cfg.DatabaseFile)
	require.Equal(t, "base64", cfg.StoreEncoding)
	require.False(t, cfg.RedactFailedLogins)
	require.Equal(t, 250*time.Millisecond, cfg.MinLoginDuration)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HUB_STORE_DRIVER", "file")
	t.Setenv("HUB_AUDIT_REDACT_FAILED_LOGINS", "true")
	t.Setenv("HUB_MIN_LOGIN_DURATION", "100")
	t.Setenv("HUB_AUDIT_QUEUE_SIZE", "not-a-number")

	cfg := LoadConfig()
	require.Equal(t, "file", cfg.StoreDriver)
	require.True(t, cfg.RedactFailedLogins)
	require.Equal(t, 100*time.Millisecond, cfg.MinLoginDuration)
	require.Equal(t, 256, cfg.AuditQueueSize)
}

func TestNewWithSQLite(t *testing.T) {
	cfg := Config{
		StoreDriver:         "sqlite",
		DatabaseFile:        filepath.Join(t.TempDir(), "hub.db"),
		StoreEncoding:       "base64",
		LogLevel:            "error",
		ShutdownGracePeriod: time.Second,
	}

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewSealedNeedsKey(t *testing.T) {
	t.Setenv(masterKeyEnv, "")

	_, err := New(Config{StoreDriver: "memory", StoreEncoding: "sealed", LogLevel: "error"})
	require.ErrorContains(t, err, "master key")

	t.Setenv(masterKeyEnv, "some key material")
	application, err := New(Config{StoreDriver: "memory", StoreEncoding: "sealed", LogLevel: "error"})
	require.NoError(t, err)
	_ = application.Shutdown()
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(Config{StoreDriver: "etcd", LogLevel: "error"})
	require.ErrorContains(t, err, "unknown driver")
}
