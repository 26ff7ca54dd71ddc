package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/app"
	"github.com/samirwankhede/channel-booking-reports/internal/config"
	kafkax "github.com/samirwankhede/channel-booking-reports/internal/kafka"
	redisx "github.com/samirwankhede/channel-booking-reports/internal/redis"
	exportsService "github.com/samirwankhede/channel-booking-reports/internal/service/exports"
	"github.com/samirwankhede/channel-booking-reports/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := app.Logger(cfg, "worker")
	defer log.Sync()
	log.Info("worker starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.NewClient(cfg.RedisAddr)
	defer rdb.Close()

	reportsSvc := app.NewReports(cfg, log, db, rdb)

	// Create Kafka consumer and producers
	consumer := kafkax.NewConsumer(cfg.Brokers(), "reports-exporter", cfg.ExportTopic)
	defer consumer.Close()
	requeue := kafkax.NewProducer(cfg.Brokers(), cfg.ExportTopic)
	defer requeue.Close()
	dlq := kafkax.NewProducer(cfg.Brokers(), cfg.ExportDLQTopic)
	defer dlq.Close()

	exportsSvc := exportsService.NewExportsService(log, reportsSvc, redisx.NewJobStore(rdb, cfg.ExportTTL), requeue, cfg.TopN)

	e := worker.NewExporter(log, exportsSvc, consumer, dlq, cfg.MaxWorkerRoutineCount)
	if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("exporter stopped", zap.Error(err))
	}
	log.Info("worker stopped")
}
