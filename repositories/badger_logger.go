package repositories

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// badgerLogger redirects badger's printf-style output to slog.
type badgerLogger struct {
	log *slog.Logger
}

var _ badger.Logger = badgerLogger{}

func NewBadgerLogger(log *slog.Logger) badger.Logger {
	return badgerLogger{log: log.With("component", "badger")}
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Error(clean(format, args))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warn(clean(format, args))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.log.Info(clean(format, args))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.log.Debug(clean(format, args))
}

// badger terminates most messages with a newline
func clean(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
