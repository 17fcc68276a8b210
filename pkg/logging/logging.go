// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/borgmon/ics-importer/pkg/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger writing to stderr at the configured level and, when
// a file is configured, to a rotating debug log.
func New(config models.LogConfig) (*zap.Logger, error) {
	return newLogger(config, os.Stderr)
}

func newLogger(config models.LogConfig, console io.Writer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if config.Level != "" {
		if err := level.UnmarshalText([]byte(config.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
	}

	encConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	cores := make([]zapcore.Core, 0, 2)
	cores = append(cores, zapcore.NewCore(
		zapcore.NewConsoleEncoder(encConfig),
		zapcore.Lock(zapcore.AddSync(console)),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= level
		})))
	if config.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename: config.File,
				MaxSize:  config.MaxSizeMB,
				MaxAge:   config.KeepDays,
			}),
			zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= zap.DebugLevel
			})))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
