package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/audit"
	httpapi "github.com/aussiebroadwan/hub/internal/hub/http"
	"github.com/aussiebroadwan/hub/internal/hub/service"
	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/pkg/cryptox"
	"github.com/aussiebroadwan/hub/pkg/slogx"

	_ "github.com/aussiebroadwan/hub/internal/hub/store/drivers/file"
	_ "github.com/aussiebroadwan/hub/internal/hub/store/drivers/memory"
	_ "github.com/aussiebroadwan/hub/internal/hub/store/drivers/sqlite"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the hub daemon with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    *store.Store
	audit *audit.Dispatcher

	credentials *service.CredentialStore
	sessions    *service.SessionManager
	invitations *service.InvitationEngine
	merges      *service.MergeRegistry

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "hub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		merges: &service.MergeRegistry{},
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initAudit()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Merges exposes the registry feature modules use to receive accepted shares.
func (app *Application) Merges() *service.MergeRegistry { return app.merges }

// Handler returns the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run restores any persisted session, starts serving and blocks until a
// shutdown signal or server error.
func (app *Application) Run() error {
	app.audit.Start()

	if err := app.restore(slogx.WithContext(context.Background(), app.logger)); err != nil {
		return err
	}

	app.logger.Info("hub starting", "port", app.cfg.Port, "version", BuildVersion, "store", app.cfg.StoreDriver)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down hub...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.close(); err != nil {
		return err
	}

	app.logger.Info("hub stopped")
	return nil
}

// close flushes queued audit events and releases the store.
// restore loads the persisted session. A storage failure releases the
// dispatcher and store before returning.
func (app *Application) restore(ctx context.Context) error {
	if _, err := app.sessions.Restore(ctx); err != nil {
		if !errors.Is(err, service.ErrNoSession) {
			_ = app.close()
			return fmt.Errorf("failed to restore session: %w", err)
		}
		app.logger.Info("no session to restore")
	}
	return nil
}

func (app *Application) close() error {
	app.audit.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}
	return nil
}

func (app *Application) initStore() error {
	var sealer *cryptox.Sealer
	if app.cfg.StoreEncoding == store.EncodingSealed {
		key, err := cryptox.LoadKey(app.cfg.MasterKeyPath, masterKeyEnv)
		if err != nil {
			return fmt.Errorf("failed to load master key: %w", err)
		}
		if sealer, err = cryptox.NewSealer(key); err != nil {
			return err
		}
	}

	codec, err := store.NewCodec(app.cfg.StoreEncoding, sealer)
	if err != nil {
		return err
	}

	kv, err := store.Open(store.DriverConfig{
		Driver:       app.cfg.StoreDriver,
		DatabaseFile: app.cfg.DatabaseFile,
		DataDir:      app.cfg.DataDir,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	app.db = store.New(kv, codec)
	app.logger.Info("store opened", "driver", app.cfg.StoreDriver, "encoding", app.cfg.StoreEncoding)
	return nil
}

func (app *Application) initAudit() {
	sinks := audit.MultiSink{audit.LogSink{Logger: app.logger}}

	if app.cfg.AuditWebhookURL != "" {
		sinks = append(sinks, audit.WebhookSink{
			URL:    app.cfg.AuditWebhookURL,
			Secret: []byte(app.cfg.AuditWebhookSecret),
			Client: &http.Client{Timeout: audit.DefaultSendTimeout},
		})
		app.logger.Info("audit webhook enabled", "signed", app.cfg.AuditWebhookSecret != "")
	}

	app.audit = audit.NewDispatcher(sinks, app.logger, audit.Config{
		QueueSize:    app.cfg.AuditQueueSize,
		RedactFailed: app.cfg.RedactFailedLogins,
	})
}

func (app *Application) initServices() {
	app.credentials = &service.CredentialStore{
		Store: app.db,
		Audit: app.audit,
	}
	app.sessions = &service.SessionManager{
		Store:            app.db,
		Credentials:      app.credentials,
		Audit:            app.audit,
		MinLoginDuration: app.cfg.MinLoginDuration,
	}
	app.invitations = &service.InvitationEngine{
		Store:       app.db,
		Credentials: app.credentials,
		Sessions:    app.sessions,
		Audit:       app.audit,
		Merges:      app.merges,
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.Credentials = app.credentials
	router.Sessions = app.sessions
	router.Invitations = app.invitations
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
