// Package logging builds the zap.Logger every other package logs through,
// grounded on the logger package found across the example corpus: a small
// Config selecting level/format/output, wired into zapcore manually rather
// than through zap's own config-from-string helpers.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format selects the encoding zap uses for each log line.
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// Rotate configures lumberjack-backed file rotation. A nil Config.Rotate
// disables file output; New then logs to stdout only.
type Rotate struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Config selects the logger's level, format, and output destinations.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format Format
	Console bool
	Rotate  *Rotate
}

// DefaultConfig logs info-and-above JSON to stdout.
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: JSONFormat, Console: true}
}

// New builds a zap.Logger from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Format == ConsoleFormat {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	var writers []zapcore.WriteSyncer
	if cfg.Console || cfg.Rotate == nil {
		writers = append(writers, zapcore.AddSync(os.Stdout))
	}
	if cfg.Rotate != nil {
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Rotate.Filename,
			MaxSize:    cfg.Rotate.MaxSizeMB,
			MaxBackups: cfg.Rotate.MaxBackups,
			MaxAge:     cfg.Rotate.MaxAgeDays,
			Compress:   cfg.Rotate.Compress,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), level)
	return zap.New(core, zap.AddCaller()), nil
}
