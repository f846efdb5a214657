// Package logger holds the process-wide logrus logger. The interactive table
// owns the terminal, so log output goes to a rotating file, never stdout.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is discarded until Init is called.
var Log = newDiscardLogger()

// Config controls where and how much is logged.
type Config struct {
	File       string // log file path; empty keeps logging disabled
	Level      string // debug, info, warn or error
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Init points Log at a rotating log file.
func Init(cfg Config) error {
	Log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	Log.SetLevel(ParseLevel(cfg.Level))

	if cfg.File == "" {
		Log.SetOutput(io.Discard)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return err
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 5
	}
	Log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize, // megabytes
		MaxBackups: cfg.MaxBackups,
		MaxAge:     28, // days
		Compress:   cfg.Compress,
	})
	return nil
}

// SetOutput redirects Log, mainly for tests.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// ParseLevel maps a config level name to a logrus level. Unknown names
// fall back to info.
func ParseLevel(name string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
