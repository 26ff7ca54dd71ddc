package logger

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File configures the optional rotating log file. An empty Dir disables it.
type File struct {
	Dir        string
	Name       string
	MaxSizeMB  int
	MaxBackups int
}

// New creates a new zap logger based on environment.
func New(env string, file File) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	if file.Dir == "" {
		return l
	}

	name := file.Name
	if name == "" {
		name = "reports"
	}
	writer := &lumberjack.Logger{
		Filename:   filepath.Join(file.Dir, name+".log"),
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(writer), cfg.Level)

	return l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))
}
