// Package app assembles the report stack shared by the binaries.
package app

import (
	"context"
	"errors"
	"os"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/config"
	"github.com/samirwankhede/channel-booking-reports/internal/logger"
	"github.com/samirwankhede/channel-booking-reports/internal/masterdata"
	redisx "github.com/samirwankhede/channel-booking-reports/internal/redis"
	"github.com/samirwankhede/channel-booking-reports/internal/report"
	"github.com/samirwankhede/channel-booking-reports/internal/report/channel"
	"github.com/samirwankhede/channel-booking-reports/internal/report/query"
	"github.com/samirwankhede/channel-booking-reports/internal/report/status"
	reportsService "github.com/samirwankhede/channel-booking-reports/internal/service/reports"
	"github.com/samirwankhede/channel-booking-reports/internal/store"
	"github.com/samirwankhede/channel-booking-reports/internal/store/reference"
	storeReports "github.com/samirwankhede/channel-booking-reports/internal/store/reports"
)

// Logger builds the process logger writing to <LOG_DIR>/<name>.log when configured.
func Logger(cfg config.Config, name string) *zap.Logger {
	return logger.New(cfg.Env, logger.File{
		Dir:        cfg.LogDir,
		Name:       name + ".log",
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
}

// OpenDB connects the pool with the configured health checks and recycling.
func OpenDB(ctx context.Context, cfg config.Config) (*store.DB, error) {
	return store.NewDB(ctx, cfg.PostgresURL, store.Options{
		MaxConns:          int32(cfg.MaxDBConnections),
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
		MaxConnLifetime:   cfg.DBConnLifetime,
	})
}

// LoadMasterData reads the reference workbook once. A missing or unreadable
// workbook leaves the built-in tables in charge.
func LoadMasterData(cfg config.Config, log *zap.Logger) masterdata.Data {
	data, err := masterdata.Load(cfg.MasterDataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("no master data workbook, using built-in tables", zap.String("path", cfg.MasterDataPath))
		} else {
			log.Warn("master data workbook unreadable, using built-in tables", zap.String("path", cfg.MasterDataPath), zap.Error(err))
		}
		return masterdata.Data{Channels: channel.IndexTable{}}
	}
	for _, w := range data.Warnings {
		log.Warn("master data", zap.String("warning", w))
	}
	log.Info("master data loaded",
		zap.Int("channels", len(data.Channels)),
		zap.Int("statuses", len(data.Statuses)))
	return data
}

// Taxonomy prefers the workbook's status sheet over the built-in defaults.
func Taxonomy(data masterdata.Data, log *zap.Logger) status.Taxonomy {
	entries := data.Statuses
	if len(entries) == 0 {
		entries = status.Defaults()
	}
	tax, conflicts := status.New(entries)
	for _, c := range conflicts {
		log.Warn("status code assigned to more than one group, keeping the first",
			zap.String("code", c.Code), zap.String("ignored_group", string(c.Group)))
	}
	return tax
}

// NewReports wires the report service over db. client may be nil, in which case
// the channel list is cached in process only.
func NewReports(cfg config.Config, log *zap.Logger, db *store.DB, client *redis.Client) *reportsService.ReportsService {
	data := LoadMasterData(cfg, log)
	composer := query.NewComposer(report.CapabilitiesFor(cfg.SchemaVersion), Taxonomy(data, log), cfg.Location())
	log.Info("report schema", zap.String("version", composer.Caps.Version), zap.String("timezone", composer.Location.String()))

	return reportsService.NewReportsService(
		log,
		storeReports.NewReportsRepository(db, log),
		reference.NewReferenceRepository(db, log),
		redisx.NewChannelCache(client, composer.Caps.Version, cfg.ChannelCacheTTL),
		composer,
		data.Channels,
	)
}

// Limits returns the caller-side validation bounds from configuration.
func Limits(cfg config.Config) report.Limits {
	return report.Limits{
		MaxRangeDays:           cfg.MaxRangeDays,
		OrderDateEndOffsetDays: cfg.OrderDateEndOffsetDays,
		UseDateEndOffsetDays:   cfg.UseDateEndOffsetDays,
	}
}
