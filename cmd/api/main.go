package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"beira/internal/config"
	"beira/internal/db"
	"beira/internal/httpserver"
	"beira/internal/platform/etsy"
	"beira/internal/platform/square"
	"beira/internal/service/syncer"
	"beira/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := config.NewLogger(cfg.LogLevel)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.WithError(err).Fatal("connect to db")
	}
	defer dbpool.Close()

	st := store.New(dbpool, logger)

	etsyCfg := etsy.Config{
		ClientID:     cfg.EtsyClientID,
		SharedSecret: cfg.EtsySharedSecret,
		RedirectURL:  cfg.EtsyRedirectURL,
	}
	squareCfg := square.Config{
		AccessToken: cfg.SquareAccessToken,
		Environment: cfg.SquareEnvironment,
	}

	syncs := syncer.New(
		func(ctx context.Context) (syncer.EtsySyncer, error) {
			return etsy.New(ctx, etsyCfg, st.Settings, st, logger)
		},
		func(ctx context.Context) (syncer.SquareSyncer, error) {
			return square.New(ctx, squareCfg, st.Settings, st, logger)
		},
		logger,
	)

	var etsyConnect httpserver.EtsyConnector
	if cfg.EtsyClientID != "" && cfg.EtsySharedSecret != "" {
		etsyConnect = etsy.NewAuthorizer(etsy.NewClient(etsyCfg, "", "", nil), st.Settings)
	}

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Customers:        st.Customers,
		Products:         st.Products,
		Orders:           st.Orders,
		Messages:         st.Messages,
		Settings:         st.Settings,
		Syncs:            syncs,
		EtsyConnect:      etsyConnect,
		SquareConfigured: cfg.SquareAccessToken != "",
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
	case err := <-serverErr:
		logger.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	} else {
		logger.Info("server stopped")
	}
}
