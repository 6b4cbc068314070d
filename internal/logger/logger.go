package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// Init configures the process logger and installs it for Get. format is
// "json" or "text"; an unparseable level falls back to info.
func Init(level, format string) *logrus.Logger {
	l := New(level, format, os.Stdout)
	Set(l)
	return l
}

// New builds a logger writing to out without touching the global instance
func New(level, format string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	if parsed, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		l.SetLevel(parsed)
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.WithField("invalid_level", level).Warn("Invalid LOG_LEVEL, using info")
	}

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return l
}

// Set installs l as the process logger
func Set(l *logrus.Logger) {
	log = l
}

// Get returns the process logger, creating an info-level text logger if Init was never called
func Get() *logrus.Logger {
	if log == nil {
		log = New("info", "text", os.Stdout)
	}
	return log
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WithComponent tags entries with the emitting component
func WithComponent(component string) *logrus.Entry {
	return Get().WithField("component", component)
}
