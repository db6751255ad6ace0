package sketch

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR"}

func (lv Level) String() string {
	if lv < LevelDebug || lv > LevelError {
		return fmt.Sprintf("Level(%d)", int(lv))
	}
	return levelNames[lv]
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	if strings.EqualFold(s, "warning") {
		return LevelWarn, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// levelState is shared between a logger and everything Named from it.
type levelState struct {
	mu    sync.Mutex
	level Level
}

// DefaultLogger writes Debug/Info to one stream and Warn/Error to another.
// Loggers derived with Named share streams and level with their parent.
type DefaultLogger struct {
	state  *levelState
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	level := LevelInfo
	if debug {
		level = LevelDebug
	}
	return NewLoggerTo(os.Stdout, os.Stderr, prefix, level)
}

func NewLoggerTo(out, errOut io.Writer, prefix string, level Level) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		state:  &levelState{level: level},
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
}

// Named returns a logger for a subsystem, prefixed "parent/name".
func (l *DefaultLogger) Named(name string) *DefaultLogger {
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "/" + name
	}
	return &DefaultLogger{state: l.state, prefix: prefix, out: l.out, err: l.err}
}

func (l *DefaultLogger) Level() Level {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.level
}

func (l *DefaultLogger) SetLevel(level Level) {
	l.state.mu.Lock()
	l.state.level = level
	l.state.mu.Unlock()
}

func (l *DefaultLogger) DebugEnabled() bool {
	return l.Level() <= LevelDebug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	if enabled {
		l.SetLevel(LevelDebug)
	} else if l.Level() == LevelDebug {
		l.SetLevel(LevelInfo)
	}
}

func (l *DefaultLogger) logf(level Level, format string, args ...any) {
	if level < l.Level() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s: %s", l.prefix, level, msg)
	} else {
		msg = fmt.Sprintf("%s: %s", level, msg)
	}
	if level >= LevelWarn {
		l.err.Print(msg)
		return
	}
	l.out.Print(msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

// LoggingModule installs a DefaultLogger as a resource. Level wins over Debug
// when set.
type LoggingModule struct {
	Prefix string
	Debug  bool
	Level  string
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	prefix := m.Prefix
	if prefix == "" {
		prefix = "sketch"
	}
	logger := NewDefaultLogger(prefix, m.Debug)
	if m.Level != "" {
		level, err := ParseLevel(m.Level)
		if err != nil {
			logger.Warnf("%v, using %s", err, level)
		}
		logger.SetLevel(level)
	}
	cmd.AddResources(logger)
}

type nopLogger struct{}

func NewNopLogger() Logger                             { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// Logger returns the first Logger resource, or a no-op logger when none is
// installed.
func (app *App) Logger() Logger {
	if app == nil || app.resources == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
