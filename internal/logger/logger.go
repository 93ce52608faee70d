// Package logger wraps logrus behind a small package-level API so the rest of
// the codebase can write structured logs without carrying a logger instance
// around. Call logger.Init once at startup; every other package just calls
// logger.Infof / logger.Errorf / etc.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// Init adjusts the log level for the given environment.
// "development" gets debug output; everything else stays at info.
func Init(env string) {
	if env == "development" {
		log.SetLevel(logrus.DebugLevel)
	}
}

// WithFields returns an entry carrying structured key/value context,
// e.g. logger.WithFields(logrus.Fields{"bookingID": id}).Info("cancelled").
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

func Info(args ...interface{}) {
	log.Info(args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Warn(args ...interface{}) {
	log.Warn(args...)
}

func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Error(args ...interface{}) {
	log.Error(args...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Fatal(args ...interface{}) {
	log.Fatal(args...)
}

func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}
