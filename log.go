package casjobs

import (
	"io"

	rlog "github.com/sirupsen/logrus"
)

// CJLogger is the logging interface used throughout the client. It
// abstracts away the underlying logging mechanism so an embedding
// application can substitute its own implementation.
type CJLogger interface {
	rlog.Ext1FieldLogger
	SetLogLevel(level string) error
	GetLogLevel() string
	SetOutput(output io.Writer)
}

type defaultLogger struct {
	*rlog.Logger
}

// SetLogLevel sets the log level. Levels are those understood by logrus:
// trace, debug, info, warning, error, fatal, panic.
func (log *defaultLogger) SetLogLevel(level string) error {
	actual, err := rlog.ParseLevel(level)
	if err != nil {
		return err
	}
	log.Logger.SetLevel(actual)
	return nil
}

// GetLogLevel returns the current log level.
func (log *defaultLogger) GetLogLevel() string {
	return log.Logger.GetLevel().String()
}

func createDefaultLogger() CJLogger {
	inner := rlog.New()
	inner.SetLevel(rlog.WarnLevel)
	return &defaultLogger{inner}
}

var logger = createDefaultLogger()

// SetLogger sets a new logger implementing the CJLogger interface.
func SetLogger(inLogger CJLogger) {
	logger = inLogger
}

// GetLogger returns the logger currently in use by the client.
func GetLogger() CJLogger {
	return logger
}
