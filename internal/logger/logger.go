// Package logger builds the application's logrus logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is a logrus level name.
type Level string

// Format selects the log encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config describes where and how logs are written.
type Config struct {
	Level      Level  `yaml:"level"`
	Format     Format `yaml:"format"`
	Output     string `yaml:"output"`      // stdout, stderr, file
	Filename   string `yaml:"filename"`    // used when output is file
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxAge     int    `yaml:"max_age"`     // days
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	if c.Output == "file" && c.Filename == "" {
		c.Filename = "logs/assetcompare.log"
	}
	if c.MaxSize == 0 {
		c.MaxSize = 50
	}
	if c.MaxAge == 0 {
		c.MaxAge = 30
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	return c
}

// New creates a logger from the config. The returned closer releases the log
// file, if any.
func New(cfg Config) (*logrus.Logger, io.Closer, error) {
	cfg = cfg.WithDefaults()
	log := logrus.New()

	level, err := logrus.ParseLevel(string(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case FormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case FormatText:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return nil, nil, fmt.Errorf("log format %q is not supported", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	switch cfg.Output {
	case "stdout":
		log.SetOutput(os.Stdout)
	case "stderr":
		log.SetOutput(os.Stderr)
	case "file":
		lj := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		log.SetOutput(lj)
		closer = lj
	default:
		return nil, nil, fmt.Errorf("log output %q is not supported", cfg.Output)
	}
	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
