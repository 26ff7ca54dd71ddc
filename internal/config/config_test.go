package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SCHEMA_VERSION", "")
	t.Setenv("CHANNEL_CACHE_TTL", "")
	t.Setenv("USE_DATE_END_OFFSET_DAYS", "")

	cfg := Load()
	assert.Equal(t, "v1.5", cfg.SchemaVersion)
	assert.Equal(t, time.Hour, cfg.ChannelCacheTTL)
	assert.Equal(t, 90, cfg.MaxRangeDays)
	assert.Equal(t, -1, cfg.OrderDateEndOffsetDays)
	assert.Equal(t, 90, cfg.UseDateEndOffsetDays)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_RANGE_DAYS", "30")
	t.Setenv("DB_CONN_LIFETIME", "15m")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 30, cfg.MaxRangeDays)
	assert.Equal(t, 15*time.Minute, cfg.DBConnLifetime)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers())
	assert.Equal(t, 8080, cfg.HTTPPort)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Config{ReportTimezone: "Mars/Olympus"}.Location())
}
