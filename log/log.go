// Package log provides file-backed structured logging on top of logrus.
//
// Logging is off unless logs.write is enabled; until then every call is a no-op
// so the terminal control panel is never interleaved with log output.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/panorama-cli/panorama/filesystem"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Fields is an alias so callers do not import logrus directly.
type Fields = logrus.Fields

var enabled bool

// Setup opens today's log file and applies formatter and level from the configuration.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	configure(f)
	return nil
}

// SetOutput enables logging to w with the configured formatter. Tests use it to capture entries.
func SetOutput(w io.Writer) {
	enabled = true
	configure(w)
}

func configure(w io.Writer) {
	logrus.SetOutput(w)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// Entry is a logger carrying a fixed set of fields.
type Entry struct {
	fields Fields
}

// WithFields returns an Entry that attaches fields to every message.
func WithFields(fields Fields) Entry {
	return Entry{fields: fields}
}

// WithField is WithFields for a single pair.
func WithField(name string, value any) Entry {
	return Entry{fields: Fields{name: value}}
}

func (e Entry) entry() *logrus.Entry {
	return logrus.WithFields(e.fields)
}

func (e Entry) Debugf(format string, args ...any) {
	if enabled {
		e.entry().Debugf(format, args...)
	}
}

func (e Entry) Infof(format string, args ...any) {
	if enabled {
		e.entry().Infof(format, args...)
	}
}

func (e Entry) Warnf(format string, args ...any) {
	if enabled {
		e.entry().Warnf(format, args...)
	}
}

func (e Entry) Errorf(format string, args ...any) {
	if enabled {
		e.entry().Errorf(format, args...)
	}
}

func Error(args ...any) {
	if enabled {
		logrus.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}

func Infof(format string, args ...any) {
	if enabled {
		logrus.Infof(format, args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}
