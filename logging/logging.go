// Package logging builds the zap loggers used by the tribit commands.
package logging

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DEFAULT_MAX_SIZE    = 10 // Megabytes per log file before rotation.
	DEFAULT_MAX_BACKUPS = 3  // Rotated log files kept.
)

// Options selects the log sinks.
type Options struct {
	Verbose    bool                // Log at debug level.
	File       string              // If set, also log JSON lines to this rotating file.
	MaxSize    int                 // Megabytes before rotation; DEFAULT_MAX_SIZE if zero.
	MaxBackups int                 // Rotated files kept; DEFAULT_MAX_BACKUPS if zero.
	Console    zapcore.WriteSyncer // Console sink; stderr if nil.
}

// New builds a logger. The returned sync function flushes the logger and
// closes the log file, if any.
func New(opts Options) (logger *zap.Logger, sync func() error) {
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stderr)
	}

	console_config := zap.NewDevelopmentEncoderConfig()
	console_config.TimeKey = ""

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(console_config), console, level),
	}

	var file *lumberjack.Logger
	if len(opts.File) != 0 {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
		}
		if file.MaxSize == 0 {
			file.MaxSize = DEFAULT_MAX_SIZE
		}
		if file.MaxBackups == 0 {
			file.MaxBackups = DEFAULT_MAX_BACKUPS
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(file),
			level,
		))
	}

	logger = zap.New(zapcore.NewTee(cores...))

	sync = func() (err error) {
		// Syncing a terminal stderr fails on some platforms; only the file matters.
		_ = logger.Sync()
		if file != nil {
			err = file.Close()
		}
		return
	}

	return
}

// WithRun tags the logger with a fresh run identifier.
func WithRun(logger *zap.Logger) (tagged *zap.Logger, run string) {
	run = uuid.NewString()
	tagged = logger.With(zap.String("run", run))
	return
}
