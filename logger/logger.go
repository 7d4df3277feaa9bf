package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	// Packages log from their own init funcs, so the loggers must never be nil.
	InfoLogger = newLogger(os.Stdout, logrus.InfoLevel)
	WarnLogger = newLogger(os.Stdout, logrus.WarnLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.ErrorLevel)
}

// InitLoggers wires the three loggers to stdout/stderr plus a rotating log file.
// LOG_FILE overrides the default path; an empty LOG_DISABLE_FILE keeps file output on.
func InitLoggers() {
	if os.Getenv("LOG_DISABLE_FILE") != "" {
		return
	}

	path := os.Getenv("LOG_FILE")
	if path == "" {
		path = "logs/venue.log"
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}

	InfoLogger = newLogger(io.MultiWriter(os.Stdout, rotator), logrus.InfoLevel)
	WarnLogger = newLogger(io.MultiWriter(os.Stdout, rotator), logrus.WarnLevel)
	ErrorLogger = newLogger(io.MultiWriter(os.Stderr, rotator), logrus.ErrorLevel)
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return l
}
