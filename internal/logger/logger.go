// Package logger is the process-wide structured logger. Until Init runs every
// call is discarded, so packages can log freely from tests.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const fileName = "solace.log"

var (
	Logger = log.New(io.Discard)
	rotor  *lumberjack.Logger
)

type Config struct {
	Debug     bool
	ConfigDir string
	// Level overrides the level implied by Debug ("debug", "info", "warn", "error")
	Level string
}

// Init sends log output to ConfigDir/logs/solace.log, rotated at 10 MB with three
// compressed backups kept for four weeks. Debug mode tees to stderr.
func Init(cfg Config) error {
	dir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, fileName),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	var out io.Writer = file
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, file)
	}

	Close()
	rotor = file
	Logger = log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          "solace",
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
		CallerOffset:    1,
	})
	return nil
}

// Close flushes and releases the log file, leaving a discarding logger behind
func Close() {
	if rotor != nil {
		rotor.Close()
		rotor = nil
	}
	Logger = log.New(io.Discard)
}

func Debug(msg string, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { Logger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { Logger.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }

// Fatal logs and exits with status 1
func Fatal(msg string, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
	Close()
	os.Exit(1)
}
