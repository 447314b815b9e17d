// Package vmlog is a small wrapper over the standard library's log.Logger,
// in the shape the reference runtime's own log package is written: one
// struct, one output sink, one line per event, no structured encoder. The
// retrieved pack carries no ecosystem logging library, so this is the one
// ambient concern implemented directly on the standard library (see
// DESIGN.md).
package vmlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level orders log severity from most to least verbose.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "?"
	}
}

// Logger wraps a *log.Logger with a minimum level filter.
type Logger struct {
	out *log.Logger
	min Level
}

// New returns a Logger writing to w with LstdFlags|Lshortfile, filtering
// out anything below min.
func New(w io.Writer, min Level) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags|log.Lshortfile), min: min}
}

// Default returns a Logger writing to stderr at Info level, the same
// default sink the reference runtime's own standard Logger uses.
func Default() *Logger { return New(os.Stderr, Info) }

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.min {
		return
	}
	_ = l.out.Output(3, "["+level.String()+"] "+fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(Error, format, args...) }
