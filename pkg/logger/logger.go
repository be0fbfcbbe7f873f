package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"deep-research/config"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stdout)
	log.SetLevel(levelFor(config.Cfg.LogLevel))
	log.SetFormatter(formatterFor(config.Cfg.Server.Mode))
}

func levelFor(level config.LogLevel) logrus.Level {
	switch level {
	case config.Debug:
		return logrus.DebugLevel
	case config.Warn:
		return logrus.WarnLevel
	case config.Error:
		return logrus.ErrorLevel
	case config.Fatal:
		return logrus.FatalLevel
	case config.Panic:
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// formatterFor emits JSON lines in release mode and padded, colored text otherwise.
func formatterFor(mode string) logrus.Formatter {
	if mode == "release" {
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		ForceColors:     true,
		DisableQuote:    true,
		PadLevelText:    true,
	}
}

// caller is the file:line of the code that called a package-level helper.
func caller() string {
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func logf(level logrus.Level, err error, format string, args ...interface{}) {
	entry := log.WithField("caller", caller())
	if err != nil {
		entry = entry.WithField(logrus.ErrorKey, err.Error())
	}
	entry.Logf(level, format, args...)
}

func Info(format string, args ...interface{}) {
	logf(logrus.InfoLevel, nil, format, args...)
}

func Error(err error, format string, args ...interface{}) {
	logf(logrus.ErrorLevel, err, format, args...)
}

// Fatal logs at fatal level and exits the process.
func Fatal(err error, format string, args ...interface{}) {
	logf(logrus.FatalLevel, err, format, args...)
	log.Exit(1)
}

// WithModule tags an entry with the module that produced it.
func WithModule(module config.Module) *logrus.Entry {
	return log.WithField("module", string(module))
}

func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// SetLevel parses levelStr (debug, info, warn, error...) and applies it.
func SetLevel(levelStr string) error {
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)
	return nil
}

// SetOutput redirects log output, e.g. to io.Discard in tests or stderr in the CLI.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
