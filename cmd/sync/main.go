// Command sync runs a single sync pass from the command line, for cron jobs
// and manual backfills.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"beira/internal/config"
	"beira/internal/db"
	"beira/internal/platform/etsy"
	"beira/internal/platform/square"
	"beira/internal/service/syncer"
	"beira/internal/store"
)

func main() {
	platform := flag.String("platform", "", "platform to sync: etsy or square")
	kind := flag.String("kind", "orders", "what to sync: orders or catalog")
	days := flag.Int("days", syncer.DefaultDaysBack, "lookback window in days for order syncs")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := config.NewLogger(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	st := store.New(pool, logger)
	syncs := syncer.New(
		func(ctx context.Context) (syncer.EtsySyncer, error) {
			return etsy.New(ctx, etsy.Config{
				ClientID:     cfg.EtsyClientID,
				SharedSecret: cfg.EtsySharedSecret,
				RedirectURL:  cfg.EtsyRedirectURL,
			}, st.Settings, st, logger)
		},
		func(ctx context.Context) (syncer.SquareSyncer, error) {
			return square.New(ctx, square.Config{
				AccessToken: cfg.SquareAccessToken,
				Environment: cfg.SquareEnvironment,
			}, st.Settings, st, logger)
		},
		logger,
	)

	var result syncer.Result
	switch {
	case *platform == "etsy" && *kind == "orders":
		result, err = syncs.EtsyOrders(ctx, *days)
	case *platform == "square" && *kind == "orders":
		result, err = syncs.SquareOrders(ctx, *days)
	case *platform == "square" && *kind == "catalog":
		result, err = syncs.SquareCatalog(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unsupported combination: -platform=%s -kind=%s\n", *platform, *kind)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.WithError(err).Fatal("sync failed")
	}

	logger.WithField("created", result.Created).WithField("updated", result.Updated).Info("sync complete")
}
