// Package logger provides component-scoped structured logging for slacksweep.
//
// Every log line carries a "component" field so gateway, dispatcher, and
// moderation activity can be filtered independently. The implementation sits
// on zerolog; callers only see the level and component helpers.
package logger

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var base atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
	base.Store(&l)
}

// SetLevel adjusts the minimum level emitted by all component loggers.
func SetLevel(level Level) {
	var zl zerolog.Level
	switch level {
	case DEBUG:
		zl = zerolog.DebugLevel
	case WARN:
		zl = zerolog.WarnLevel
	case ERROR:
		zl = zerolog.ErrorLevel
	default:
		zl = zerolog.InfoLevel
	}
	l := base.Load().Level(zl)
	base.Store(&l)
}

// SetOutput redirects log output, primarily for tests.
func SetOutput(w zerolog.LevelWriter) {
	l := zerolog.New(w).With().Timestamp().Logger()
	base.Store(&l)
}

func emit(ev *zerolog.Event, component, msg string, fields map[string]any) {
	ev = ev.Str("component", component)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func DebugC(component, msg string) { DebugCF(component, msg, nil) }
func InfoC(component, msg string)  { InfoCF(component, msg, nil) }
func WarnC(component, msg string)  { WarnCF(component, msg, nil) }
func ErrorC(component, msg string) { ErrorCF(component, msg, nil) }

func DebugCF(component, msg string, fields map[string]any) {
	emit(base.Load().Debug(), component, msg, fields)
}

func InfoCF(component, msg string, fields map[string]any) {
	emit(base.Load().Info(), component, msg, fields)
}

func WarnCF(component, msg string, fields map[string]any) {
	emit(base.Load().Warn(), component, msg, fields)
}

func ErrorCF(component, msg string, fields map[string]any) {
	emit(base.Load().Error(), component, msg, fields)
}
