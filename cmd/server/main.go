package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/api"
	authHandler "github.com/samirwankhede/channel-booking-reports/internal/api/auth"
	exportsHandler "github.com/samirwankhede/channel-booking-reports/internal/api/exports"
	reportsHandler "github.com/samirwankhede/channel-booking-reports/internal/api/reports"
	"github.com/samirwankhede/channel-booking-reports/internal/app"
	"github.com/samirwankhede/channel-booking-reports/internal/config"
	kafkax "github.com/samirwankhede/channel-booking-reports/internal/kafka"
	"github.com/samirwankhede/channel-booking-reports/internal/middleware"
	redisx "github.com/samirwankhede/channel-booking-reports/internal/redis"
	authService "github.com/samirwankhede/channel-booking-reports/internal/service/auth"
	exportsService "github.com/samirwankhede/channel-booking-reports/internal/service/exports"
	"github.com/samirwankhede/channel-booking-reports/internal/store/operators"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := app.Logger(cfg, "server")
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	operatorsRepo := operators.NewOperatorsRepository(db, log)
	if err := config.CreateDefaultAdmin(ctx, &cfg, operatorsRepo); err != nil {
		log.Error("Failed to create default admin operator", zap.Error(err))
	}

	rdb := redisx.NewClient(cfg.RedisAddr)
	defer rdb.Close()

	reportsSvc := app.NewReports(cfg, log, db, rdb)
	authSvc := authService.NewAuthService(log, operatorsRepo, cfg.JWTSigningSecret, cfg.SessionTTL)

	producer := kafkax.NewProducer(cfg.Brokers(), cfg.ExportTopic)
	defer producer.Close()
	exportsSvc := exportsService.NewExportsService(log, reportsSvc, redisx.NewJobStore(rdb, cfg.ExportTTL), producer, cfg.TopN)

	params := reportsHandler.FilterParams{Location: cfg.Location(), Limits: app.Limits(cfg), Now: time.Now}
	limiter := middleware.RedisRateLimit(rdb, "exports", 10, time.Minute)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api.RegisterRoutes(r, log, api.Handlers{
		Auth:    authHandler.NewAuthHandler(log, authSvc, cfg.Env == "production"),
		Reports: reportsHandler.NewReportsHandler(log, reportsSvc, params, cfg.TopN, cfg.JWTSigningSecret),
		Exports: exportsHandler.NewExportsHandler(log, exportsSvc, params, limiter, cfg.JWTSigningSecret),
	})

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server exited")
}
