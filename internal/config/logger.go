package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a new logger based on the configuration.
// The returned function closes any rotating log files and should be deferred by the caller.
func NewLogger(cfg LoggerConfig) (zerolog.Logger, func()) {
	// Set log level
	var level zerolog.Level
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	var console io.Writer = os.Stdout
	if cfg.Format == "console" {
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	writers := []io.Writer{console}
	var files []*lumberjack.Logger

	if cfg.File != "" {
		appLog := newRotatingFile(cfg, cfg.File)
		files = append(files, appLog)
		writers = append(writers, appLog)
	}

	if cfg.ErrorFile != "" {
		errorLog := newRotatingFile(cfg, cfg.ErrorFile)
		files = append(files, errorLog)
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: errorLog},
			Level:  zerolog.ErrorLevel,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()

	closeFiles := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	return logger, closeFiles
}

func newRotatingFile(cfg LoggerConfig, filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
