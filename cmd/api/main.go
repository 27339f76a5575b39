package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gorilla/sessions"

	"github.com/audiohub/audiohub/internal/config"
	"github.com/audiohub/audiohub/internal/database"
	"github.com/audiohub/audiohub/internal/routes"
	"github.com/audiohub/audiohub/internal/storage"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	cfg := config.Load()

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", "err", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", "err", err)
	}

	var store storage.Storage
	switch cfg.Storage.Backend {
	case "s3":
		store, err = storage.NewS3(context.Background(), cfg.Storage)
	default:
		store, err = storage.NewLocal(cfg.Storage.MediaRoot)
	}
	if err != nil {
		logger.Fatal("failed to initialize storage", "backend", cfg.Storage.Backend, "err", err)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionKey))
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = !cfg.Development()

	router := routes.New(routes.Deps{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Sessions: sessionStore,
		Log:      logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", "port", cfg.Server.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
