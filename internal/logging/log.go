// Package logging provides leveled logging over the standard library's
// log package: one *log.Logger per level, each writing to os.Stderr or
// io.Discard depending on the configured minimum level. Time/date
// prefixing is optional since most deployments run under a supervisor
// that timestamps output itself.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
)

var (
	DebugPrefix = "[DEBUG] "
	InfoPrefix  = "[INFO]  "
	WarnPrefix  = "[WARN]  "
	ErrPrefix   = "[ERROR] "
)

var (
	DebugLog = log.New(DebugWriter, DebugPrefix, log.LstdFlags)
	InfoLog  = log.New(InfoWriter, InfoPrefix, log.LstdFlags)
	WarnLog  = log.New(WarnWriter, WarnPrefix, log.LstdFlags)
	ErrLog   = log.New(ErrWriter, ErrPrefix, log.LstdFlags|log.Lshortfile)
)

// SetLevel reconfigures which levels actually emit output. Levels
// below the configured one are routed to io.Discard via a cumulative
// fallthrough.
func SetLevel(level string) {
	switch level {
	case "fatal", "error":
		WarnLog.SetOutput(io.Discard)
		fallthrough
	case "warn":
		InfoLog.SetOutput(io.Discard)
		fallthrough
	case "info":
		DebugLog.SetOutput(io.Discard)
	case "trace", "debug":
		DebugLog.SetOutput(os.Stderr)
		InfoLog.SetOutput(os.Stderr)
		WarnLog.SetOutput(os.Stderr)
		ErrLog.SetOutput(os.Stderr)
	default:
		fmt.Fprintf(os.Stderr, "logging: invalid level %q, defaulting to info\n", level)
		SetLevel("info")
		return
	}
	ErrLog.SetOutput(os.Stderr)
}

func Debugf(format string, args ...any) { DebugLog.Output(2, fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { InfoLog.Output(2, fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { WarnLog.Output(2, fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { ErrLog.Output(2, fmt.Sprintf(format, args...)) }
