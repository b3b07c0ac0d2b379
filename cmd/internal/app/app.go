// Package app wires the Nexus server runtime: config, logging, stores,
// HTTP routes, and the realtime gateway.
package app

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nexus/cmd/identity"
	authapi "nexus/cmd/internal/auth/api"
	"nexus/cmd/internal/auth/session"
	"nexus/cmd/internal/chat"
	"nexus/cmd/internal/media"
	"nexus/cmd/internal/realtime"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow DB-backed resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for in-memory store mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

// App is the Nexus server runtime. It owns the HTTP wiring and the
// realtime core dependencies.
type App struct {
	cfg Config
	log Logger

	store Store

	dbPool    *pgxpool.Pool
	dbEnabled bool

	ws       *realtime.Gateway
	auth     *authapi.Handler
	messages *chat.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	st, dbPool, dbEnabled, users, msgStore, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	closeOnErr := func(e error) (*App, error) {
		_ = st.Close(context.Background())
		return nil, e
	}

	sessCfg := session.FromEnv()
	if len(sessCfg.Secret) == 0 && !dbEnabled {
		// In-memory dev mode stays runnable without configuration.
		// Sessions die with the process either way.
		sessCfg.Secret = randomSecret()
		log.Warn("session.secret.ephemeral", "reason", "NEXUS_JWT_SECRET not set")
	}
	tokens, err := session.NewManager(sessCfg)
	if err != nil {
		return closeOnErr(err)
	}

	uploader := newUploader(log)

	auth, err := authapi.NewHandler(log, authapi.FromEnv(), sessCfg, users, tokens, uploader)
	if err != nil {
		return closeOnErr(err)
	}

	registry := realtime.NewRegistry(log)
	ws := realtime.NewGateway(log, registry)
	relay := realtime.NewRelay(log, registry)

	messages := chat.NewHandler(log, chat.FromEnv(), users, msgStore, uploader, relay, auth.CurrentUser)

	return &App{
		cfg:       cfg,
		log:       log,
		store:     st,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		ws:        ws,
		auth:      auth,
		messages:  messages,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.ws, a.auth, a.messages)

	handler := WithCORS(mux, a.cfg.CORSAllowedOrigins)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and in-memory dev stores.
func newStores(ctx context.Context, cfg Config, log Logger) (Store, *pgxpool.Pool, bool, identity.Store, chat.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return nopStore{}, nil, false, identity.NewInMemoryStore(), chat.NewInMemoryStore(), nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, nil, nil, err
	}

	log.Info("db.enabled.postgres_store")

	// Ownership model: app owns the pool lifecycle; the stores never
	// close it.
	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, nil, nil, err
	}
	msgs, err := chat.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, nil, nil, err
	}

	return dbStore{pool: pool}, pool, true, users, msgs, nil
}

func newUploader(log Logger) media.Uploader {
	mediaCfg := media.CloudinaryConfigFromEnv()
	if !mediaCfg.Enabled() {
		log.Info("media.uploads.passthrough")
		return media.PassthroughUploader{}
	}

	up, err := media.NewCloudinaryUploader(mediaCfg)
	if err != nil {
		log.Warn("media.uploads.config.fail", "err", err)
		return media.PassthroughUploader{}
	}
	log.Info("media.uploads.cloudinary", "cloud", mediaCfg.CloudName)
	return up
}

func randomSecret() []byte {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return b
}

type dbStore struct {
	pool *pgxpool.Pool
}

func (s dbStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
