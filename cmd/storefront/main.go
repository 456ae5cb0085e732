package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/maison-aurelia/storefront/internal/api"
	"github.com/maison-aurelia/storefront/internal/auth"
	"github.com/maison-aurelia/storefront/internal/httpapi"
	"github.com/maison-aurelia/storefront/internal/platform/config"
	"github.com/maison-aurelia/storefront/internal/platform/localstore"
	"github.com/maison-aurelia/storefront/internal/platform/observability"
	"github.com/maison-aurelia/storefront/internal/store"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", os.Getenv("STOREFRONT_CONFIG"), "path to YAML config file")
	flag.Parse()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	records, err := localstore.New(cfg.Storage.StateDir)
	if err != nil {
		logger.Fatal("failed to open state directory", zap.Error(err))
	}

	persister, err := store.NewLocalPersister(records)
	if err != nil {
		logger.Fatal("failed to initialise persister", zap.Error(err))
	}
	st := store.New(store.Deps{
		Persister: persister,
		Logger:    logger.Named("store"),
	})

	// The client needs the manager's token and the manager needs the client,
	// so the token source is bound late through the closure.
	var mgr *auth.Manager
	backend, err := api.NewClient(api.Config{
		BaseURL:    cfg.Backend.BaseURL,
		APIVersion: cfg.Backend.APIVersion,
		HTTPClient: &http.Client{Timeout: cfg.Backend.Timeout},
		Token: func() string {
			if mgr == nil {
				return ""
			}
			return mgr.Token()
		},
		Logger: logger.Named("api"),
	})
	if err != nil {
		logger.Fatal("failed to initialise backend client", zap.Error(err))
	}

	mgr, err = auth.NewManager(auth.Deps{
		Backend: backend,
		Records: records,
		Logger:  logger.Named("auth"),
	})
	if err != nil {
		logger.Fatal("failed to initialise auth manager", zap.Error(err))
	}
	mgr.OnIdentityChange(st.SetUser)
	mgr.Restore()

	sessions, err := httpapi.NewSessionCodec(cfg.Session.CookieName, []byte(cfg.Session.HashKey), cfg.Session.Secure)
	if err != nil {
		logger.Fatal("failed to initialise session codec", zap.Error(err))
	}

	handlers, err := httpapi.NewHandlers(httpapi.Deps{
		Store:    st,
		Auth:     mgr,
		Backend:  backend,
		Sessions: sessions,
		Logger:   logger.Named("http"),
	})
	if err != nil {
		logger.Fatal("failed to initialise handlers", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handlers.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront gateway listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
