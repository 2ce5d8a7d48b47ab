package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type LogLevel log.Level

const (
	DebugLevel = LogLevel(log.DebugLevel)
	InfoLevel  = LogLevel(log.InfoLevel)
	WarnLevel  = LogLevel(log.WarnLevel)
	ErrorLevel = LogLevel(log.ErrorLevel)
	FatalLevel = LogLevel(log.FatalLevel)
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "Lumen 💡 ",
				// the helpers below add one frame
				CallerOffset: 1,
			})
			l.SetLevel(log.InfoLevel)
			singleton = &logger{l}
		})
	return singleton
}

// ParseLogLevel parses "debug", "info", "warn", "error" or "fatal".
func ParseLogLevel(level string) (LogLevel, error) {
	l, err := log.ParseLevel(level)
	if err != nil {
		return InfoLevel, err
	}
	return LogLevel(l), nil
}

func SetLogLevel(level LogLevel) {
	getLogger().SetLevel(log.Level(level))
}

func GetLogLevel() LogLevel {
	return LogLevel(getLogger().GetLevel())
}

// SetLogOutput redirects the engine log, mostly useful in tests.
func SetLogOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
