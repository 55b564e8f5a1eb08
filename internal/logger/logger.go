// Package logger provides structured logging on top of logrus, with
// request-scoped loggers carried through contexts and optional rotating
// file output for non-local environments.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a logrus entry so field-enriched copies can be passed
// around and stored in contexts.
type Logger struct {
	*logrus.Entry
}

// Config controls logger construction.
type Config struct {
	Level       string    // debug, info, warn, error
	Format      string    // json or text
	Output      io.Writer // overrides all file/stdout selection when set
	ServiceName string
	Environment string // local, dev, prod

	// Rotating file output, used when Environment is not "local".
	LogFile     string
	LogFileOnly bool
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Compress    bool
}

// LoadEnv builds a Config from LOG_* environment variables.
func LoadEnv() *Config {
	return &Config{
		Level:       envStr("LOG_LEVEL", "info"),
		Format:      envStr("LOG_FORMAT", "json"),
		ServiceName: envStr("SERVICE_NAME", "phototagger"),
		Environment: envStr("APP_ENV", "local"),
		LogFile:     envStr("LOG_FILE", "/var/log/phototagger/app.log"),
		LogFileOnly: envBool("LOG_FILE_ONLY", false),
		MaxSizeMB:   envInt("LOG_MAX_SIZE", 100),
		MaxBackups:  envInt("LOG_MAX_BACKUPS", 7),
		MaxAgeDays:  envInt("LOG_MAX_AGE", 30),
		Compress:    envBool("LOG_COMPRESS", true),
	}
}

// rotator keeps the active lumberjack writer so Sync can close it.
var (
	rotator   io.Closer
	rotatorMu sync.Mutex
)

// New creates a Logger. A nil config loads LOG_* environment variables.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = LoadEnv()
	}

	core := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	core.SetLevel(level)
	core.SetReportCaller(true)
	core.SetFormatter(newFormatter(cfg.Format))
	core.SetOutput(cfg.writer())

	return &Logger{Entry: core.WithField("service", cfg.ServiceName)}
}

// NewDefault creates a Logger from environment configuration. Intended
// for main().
func NewDefault() *Logger {
	return New(nil)
}

func (cfg *Config) writer() io.Writer {
	if cfg.Output != nil {
		return cfg.Output
	}

	var outs []io.Writer
	if cfg.Environment == "local" || !cfg.LogFileOnly {
		outs = append(outs, os.Stdout)
	}
	if cfg.Environment != "local" && cfg.LogFile != "" {
		rot := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		rotatorMu.Lock()
		rotator = rot
		rotatorMu.Unlock()
		outs = append(outs, rot)
	}
	if len(outs) == 0 {
		return os.Stdout
	}
	return io.MultiWriter(outs...)
}

// Sync closes the rotating file writer if one was opened. Call before exit.
func Sync() error {
	rotatorMu.Lock()
	defer rotatorMu.Unlock()
	if rotator != nil {
		return rotator.Close()
	}
	return nil
}

func newFormatter(format string) logrus.Formatter {
	if strings.ToLower(format) == "text" {
		return &logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  "2006-01-02T15:04:05.000Z07:00",
			CallerPrettyfier: shortCaller,
		}
	}
	return &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
		CallerPrettyfier: shortCaller,
	}
}

// shortCaller trims caller info down to function name and file:line.
func shortCaller(frame *runtime.Frame) (string, string) {
	fn := frame.Function
	if idx := strings.LastIndex(fn, "/"); idx != -1 {
		fn = fn[idx+1:]
	}
	return fn, filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
}

// WithFields returns a copy of the Logger with extra fields.
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{Entry: l.Entry.WithFields(logrus.Fields(fields))}
}

// WithField returns a copy of the Logger with one extra field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value)}
}

// WithError returns a copy of the Logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Entry: l.Entry.WithError(err)}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
