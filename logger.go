package tmigo

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface used throughout the client. Callers may
// supply their own implementation via ClientOptions.Logger.
type Logger interface {
	SetLevel(level string) error
	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
}

// FieldLogger is satisfied by loggers that can attach structured fields to a
// message, such as the channel or msg-id a NOTICE/USERNOTICE carried. The
// dispatcher upgrades to this interface when available and otherwise falls
// back to the plain Logger methods.
type FieldLogger interface {
	Logger
	WithFields(fields map[string]any) Logger
}

// DefaultLogger implements Logger/FieldLogger on top of logrus, matching the
// structured-field logging style used for IRC line handling elsewhere in the
// ecosystem (see DESIGN.md).
type DefaultLogger struct {
	entry *logrus.Entry
}

// NewLogger creates a new default logger writing to stdout at "error" level.
func NewLogger() *DefaultLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.ErrorLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &DefaultLogger{entry: logrus.NewEntry(l)}
}

// SetLevel sets the logging level using the spec's trace/debug/info/warn/error/fatal vocabulary.
func (l *DefaultLogger) SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.entry.Logger.SetLevel(lvl)
	return nil
}

// WithFields returns a Logger that attaches the given structured fields to every subsequent call.
func (l *DefaultLogger) WithFields(fields map[string]any) Logger {
	return &DefaultLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *DefaultLogger) Trace(msg string) { l.entry.Trace(msg) }
func (l *DefaultLogger) Debug(msg string) { l.entry.Debug(msg) }
func (l *DefaultLogger) Info(msg string)  { l.entry.Info(msg) }
func (l *DefaultLogger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *DefaultLogger) Error(msg string) { l.entry.Error(msg) }
func (l *DefaultLogger) Fatal(msg string) { l.entry.Fatal(msg) }

// withFields attaches structured fields to log, using FieldLogger when the
// configured logger supports it and falling back to a plain message otherwise.
func withFields(log Logger, fields map[string]any) Logger {
	if fl, ok := log.(FieldLogger); ok {
		return fl.WithFields(fields)
	}
	return log
}
