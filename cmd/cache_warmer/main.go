package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/app"
	"github.com/samirwankhede/channel-booking-reports/internal/config"
	redisx "github.com/samirwankhede/channel-booking-reports/internal/redis"
	"github.com/samirwankhede/channel-booking-reports/internal/service/reports"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := app.Logger(cfg, "cache_warmer")
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.NewClient(cfg.RedisAddr)
	defer rdb.Close()

	warmer := reports.NewChannelWarmer(log, app.NewReports(cfg, log, db, rdb))

	log.Info("Running initial channel refresh")
	if _, err := warmer.Refresh(ctx); err != nil {
		log.Error("Initial refresh failed", zap.Error(err))
	}

	log.Info("Channel cache warmer started", zap.Duration("refresh_interval", cfg.ChannelRefreshInterval))
	warmer.RunPeriodicRefresh(ctx, cfg.ChannelRefreshInterval)
	log.Info("Shutting down channel cache warmer")
}
