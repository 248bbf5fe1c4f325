// Package log provides a global logger with configurable logging level. Messages are formatted by
// logrus and may additionally be written to a rotating log file.

package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	LevelNone    Level = iota // Disables logging.
	LevelError                // Logs anomalies that are not expected to occur during normal use.
	LevelWarning              // Logs anomalies that are expected to occur occasionally during normal use.
	LevelInfo                 // Logs major events.
	LevelDebug                // Logs detailed IO
)

var logrusLevels = map[Level]logrus.Level{
	LevelError:   logrus.ErrorLevel,
	LevelWarning: logrus.WarnLevel,
	LevelInfo:    logrus.InfoLevel,
	LevelDebug:   logrus.DebugLevel,
}

var (
	logger         = newLogger()
	globalLogLevel Level
	logMutex       sync.Mutex
	logFile        *lumberjack.Logger // Guarded by logMutex
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	l.SetLevel(logrus.PanicLevel)
	return l
}

func SetLevel(level Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	globalLogLevel = level
	if l, ok := logrusLevels[level]; ok {
		logger.SetLevel(l)
	} else {
		logger.SetLevel(logrus.PanicLevel)
	}
}

func logLevel() Level {
	logMutex.Lock()
	defer logMutex.Unlock()
	return globalLogLevel
}

// SetOutput redirects console output. Hooks added by SetFile are unaffected.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetFile copies every log message to filename, rotating it once it reaches 100 MB. Rotated files
// older than maxAgeDays are removed (zero keeps them indefinitely). A later call replaces the file
// set by an earlier one.
func SetFile(filename string, maxAgeDays int) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	writer := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 30,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	hook := lfshook.NewHook(lfshook.WriterMap{
		logrus.ErrorLevel: writer,
		logrus.WarnLevel:  writer,
		logrus.InfoLevel:  writer,
		logrus.DebugLevel: writer,
	}, &logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	hooks := make(logrus.LevelHooks)
	hooks.Add(hook)

	logMutex.Lock()
	defer logMutex.Unlock()
	logger.ReplaceHooks(hooks)
	previous := logFile
	logFile = writer
	if previous != nil {
		return previous.Close()
	}
	return nil
}

func log(level Level, format string, a ...interface{}) {
	if level > logLevel() {
		return
	}
	switch level {
	case LevelDebug:
		logger.Debugf(format, a...)
	case LevelInfo:
		logger.Infof(format, a...)
	case LevelWarning:
		logger.Warnf(format, a...)
	case LevelError:
		logger.Errorf(format, a...)
	}
}

func Debug(format string, a ...interface{}) {
	log(LevelDebug, format, a...)
}
func Info(format string, a ...interface{}) {
	log(LevelInfo, format, a...)
}
func Warning(format string, a ...interface{}) {
	log(LevelWarning, format, a...)
}
func Error(format string, a ...interface{}) {
	log(LevelError, format, a...)
}
