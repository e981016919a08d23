package acq

/*------------------------------------------------------------------
 *
 * Purpose:	Leveled diagnostic logging.
 *
 * Description:	The original firmware routed everything through
 *		text_color_set()/dw_printf(), picking a terminal color
 *		per severity. We keep the same three-tier severity
 *		story (fatal/transient/ignorable) but
 *		express it with charmbracelet/log's leveled logger
 *		instead of ANSI color codes.
 *
 *------------------------------------------------------------------*/

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the narrow logging surface the core package depends on, so
// tests can substitute a no-op or capturing implementation.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// charmLogger adapts charmbracelet/log to Logger.
type charmLogger struct {
	l *charmlog.Logger
}

// NewLogger builds the production logger: timestamped, leveled output
// on stderr, configured once at startup as a single process-wide sink.
func NewLogger(level charmlog.Level) Logger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return &charmLogger{l: l}
}

func (c *charmLogger) Debugf(format string, args ...any) { c.l.Debugf(format, args...) }
func (c *charmLogger) Infof(format string, args ...any)  { c.l.Infof(format, args...) }
func (c *charmLogger) Warnf(format string, args ...any)  { c.l.Warnf(format, args...) }
func (c *charmLogger) Errorf(format string, args ...any) { c.l.Errorf(format, args...) }

// NopLogger discards everything; useful for tests that don't care
// about diagnostics.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
