// ABOUTME: Process-wide logrus setup.
// ABOUTME: Applies level and format from config and optionally routes output to a rotating file.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params selects how the standard logger writes.
type Params struct {
	Level  string
	Format string
	File   string
}

// Setup configures the standard logrus logger. Without a file, logs go to
// stderr so they never mix with command output or the MCP stdio stream.
// The returned closer releases the log file and is safe to call when no
// file is in use.
func Setup(p Params) io.Closer {
	if strings.EqualFold(p.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}
	logrus.SetLevel(GetLevel(p.Level))

	if p.File == "" {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}
	}

	if !strings.HasSuffix(p.File, ".log") {
		p.File += ".log"
	}
	lumberJackLogger := &lumberjack.Logger{
		Filename:   p.File,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		LocalTime:  false,
		Compress:   true,
	}
	logrus.SetOutput(lumberJackLogger)
	return lumberJackLogger
}

// GetLevel maps a level name to a logrus level, defaulting to warn.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
