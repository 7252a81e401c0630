package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process logger shared by the server, stores and workers.
type Logger struct {
	*logrus.Logger
}

func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{Logger: l}
}

// NewLoggerWithOptions builds a logger from the configured level and format
// ("text" or "json"). Unknown levels fall back to info.
func NewLoggerWithOptions(level, format string, out io.Writer) *Logger {
	l := NewLogger()
	if out != nil {
		l.SetOutput(out)
	}
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *Logger {
	l := NewLogger()
	l.SetOutput(io.Discard)
	return l
}
